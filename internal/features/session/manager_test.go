package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/jwt"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

type mockProvider struct{ mock.Mock }

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*User)
	return user, args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

var officer = &User{ID: "uid-1", Email: "officer@city.gov", Role: RoleAuthority, Name: "Officer", Department: "Sanitation"}

func newManager(p Provider) *Manager {
	return NewManager(p, jwt.DefaultConfig("test-secret", time.Hour), logger.Discard())
}

func TestSignIn_OpensSessionAndNotifies(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, "officer@city.gov", "pw").Return(officer, nil)
	m := newManager(p)

	var events []Event
	unsubscribe := m.Subscribe(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	sess, token, err := m.SignIn(context.Background(), " officer@city.gov ", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-1", sess.User.ID)
	assert.Equal(t, 1, m.Active())

	current, err := m.Current(token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, current.ID)

	require.Len(t, events, 1)
	assert.Equal(t, EventSignedIn, events[0].Kind)
}

func TestSignIn_ProviderErrorIsGeneric(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.Auth(apperrors.InvalidCredentials, errors.New("INVALID_PASSWORD : raw detail")))
	m := newManager(p)

	_, _, err := m.SignIn(context.Background(), "a@b.co", "bad")
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.InvalidCredentials, appErr.Reason)
	assert.Equal(t, "Invalid email or password", appErr.Message)
	assert.Equal(t, 0, m.Active())
}

func TestSignIn_UntypedErrorBecomesUnknown(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	m := newManager(p)

	_, _, err := m.SignIn(context.Background(), "a@b.co", "pw")
	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.Unknown, appErr.Reason)
}

func TestSignIn_BlankCredentials(t *testing.T) {
	p := &mockProvider{}
	m := newManager(p)
	_, _, err := m.SignIn(context.Background(), "  ", "pw")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	p.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignOut(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(officer, nil)
	p.On("SignOut", mock.Anything, "uid-1").Return(nil).Once()
	m := newManager(p)

	var kinds []EventKind
	unsubscribe := m.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	sess, token, err := m.SignIn(context.Background(), "officer@city.gov", "pw")
	require.NoError(t, err)
	require.NoError(t, m.SignOut(context.Background(), sess.ID))

	_, err = m.Current(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, []EventKind{EventSignedIn, EventSignedOut}, kinds)

	unsubscribe()
	unsubscribe()
	_, _, err = m.SignIn(context.Background(), "officer@city.gov", "pw")
	require.NoError(t, err)
	assert.Len(t, kinds, 2)
	p.AssertExpectations(t)
}

func TestSignOut_RevocationFailureStillDropsSession(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(officer, nil)
	p.On("SignOut", mock.Anything, "uid-1").Return(errors.New("network down"))
	m := newManager(p)

	sess, _, err := m.SignIn(context.Background(), "officer@city.gov", "pw")
	require.NoError(t, err)

	err = m.SignOut(context.Background(), sess.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindAuth))
	assert.Equal(t, 0, m.Active())
}

func TestCurrent_ExpiredSession(t *testing.T) {
	p := &mockProvider{}
	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(officer, nil)
	m := newManager(p)

	var mu sync.Mutex
	var kinds []EventKind
	m.Subscribe(func(e Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})

	_, token, err := m.SignIn(context.Background(), "officer@city.gov", "pw")
	require.NoError(t, err)

	// Tokens carry their own expiry, so move the clock past the session while
	// keeping the token itself checkable.
	m.mu.Lock()
	for _, s := range m.sessions {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}
	m.mu.Unlock()

	_, err = m.Current(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, 0, m.Active())
	assert.Equal(t, []EventKind{EventSignedIn, EventExpired}, kinds)
}

func TestCurrent_UnknownToken(t *testing.T) {
	m := newManager(&mockProvider{})
	_, err := m.Current("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	token, _, err := jwt.GenerateSessionToken("ghost", "uid", "", "", time.Now(), m.tokens)
	require.NoError(t, err)
	_, err = m.Current(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
