package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/jwt"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// Manager is the registry of active reviewer sessions. It is passed
// explicitly to whatever needs the current session.
type Manager struct {
	provider Provider
	tokens   *jwt.Config
	log      logrus.FieldLogger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewManager(provider Provider, tokens *jwt.Config, log logrus.FieldLogger) *Manager {
	return &Manager{
		provider: provider,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
		subs:     make(map[int]func(Event)),
	}
}

// SignIn authenticates with the provider and opens a session. The provider's
// own error text is logged and never returned.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", apperrors.Validation("email and password are required")
	}

	user, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindAuth {
			err = apperrors.Auth(apperrors.Unknown, err)
		}
		m.log.WithError(err).WithField("email", email).Warn("sign-in failed")
		return nil, "", err
	}

	m.PurgeExpired()

	issuedAt := m.now()
	id := uuid.NewString()
	token, expiresAt, err := jwt.GenerateSessionToken(id, user.ID, user.Email, string(user.Role), issuedAt, m.tokens)
	if err != nil {
		return nil, "", apperrors.Auth(apperrors.Unknown, err)
	}

	sess := &Session{ID: id, User: *user, IssuedAt: issuedAt, ExpiresAt: expiresAt}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"session_id": id, "user": user.ID, "role": user.Role}).Info("reviewer signed in")
	m.publish(Event{Kind: EventSignedIn, Session: *sess})

	out := *sess
	return &out, token, nil
}

// SignOut drops the session and revokes the reviewer's provider tokens. The
// session is dropped even when revocation fails.
func (m *Manager) SignOut(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return apperrors.Auth(apperrors.Unknown, apperrors.ErrUnauthorized)
	}

	m.publish(Event{Kind: EventSignedOut, Session: *sess})

	if err := m.provider.SignOut(ctx, sess.User.ID); err != nil {
		if apperrors.KindOf(err) != apperrors.KindAuth {
			err = apperrors.Auth(apperrors.Unknown, err)
		}
		m.log.WithError(err).WithField("session_id", sessionID).Error("token revocation failed")
		return err
	}
	m.log.WithField("session_id", sessionID).Info("reviewer signed out")
	return nil
}

// Current resolves a bearer token to its active session.
func (m *Manager) Current(token string) (*Session, error) {
	claims, err := jwt.ValidateToken(token, m.tokens)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	m.mu.RLock()
	sess, ok := m.sessions[claims.SessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	if sess.Expired(m.now()) {
		m.expire(sess.ID)
		return nil, apperrors.ErrUnauthorized
	}

	out := *sess
	return &out, nil
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PurgeExpired drops every session past its expiry.
func (m *Manager) PurgeExpired() {
	now := m.now()
	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.expire(id)
	}
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.publish(Event{Kind: EventExpired, Session: *sess})
	}
}

// Subscribe registers fn for session changes and returns a function that
// removes it. Callbacks run synchronously on the goroutine that made the change.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) publish(e Event) {
	m.subMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
