package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammedshamil8/CivicGuard/internal/middleware"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/ratelimit"
)

type mockCaller struct{ mock.Mock }

func (m *mockCaller) PlaceCall(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, subject, body string) error {
	return m.Called(ctx, subject, body).Error(0)
}

const key = "relay-secret"

func setupRouter(caller Caller, mailer Mailer, limit gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(caller, mailer, logger.Discard()), key, limit)
	return r
}

func post(r *gin.Engine, path, body string, withKey bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set(middleware.RelayKeyHeader, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestHello(t *testing.T) {
	r := setupRouter(nil, nil, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World", w.Body.String())
}

func TestSendEmail(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, "Emergency Report: New Report Submitted", "A new anonymous report has been submitted successfully.").
		Return(nil).Once()
	r := setupRouter(nil, mailer, nil)

	w := post(r, "/send-email", `{"title":"New Report Submitted","content":"A new anonymous report has been submitted successfully."}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Report sent successfully", message(t, w))
	mailer.AssertExpectations(t)
}

func TestSendEmail_FailureHidesDetail(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("535 5.7.8 bad credentials"))
	r := setupRouter(nil, mailer, nil)

	w := post(r, "/send-email", `{"title":"t","content":"c"}`, true)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send report", message(t, w))
	assert.NotContains(t, w.Body.String(), "535")
}

func TestSendEmail_Validation(t *testing.T) {
	mailer := &mockMailer{}
	r := setupRouter(nil, mailer, nil)

	w := post(r, "/send-email", `{"title":"  ","content":"c"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAlert(t *testing.T) {
	caller := &mockCaller{}
	caller.On("PlaceCall", mock.Anything).Return("CA42", nil).Once()
	caller.On("PlaceCall", mock.Anything).Return("", errors.New("twilio: 401")).Once()
	r := setupRouter(caller, nil, nil)

	w := post(r, "/alert", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"call_id":"CA42"`)

	w = post(r, "/alert", "", true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "twilio")
}

func TestRelay_RequiresKey(t *testing.T) {
	caller := &mockCaller{}
	mailer := &mockMailer{}
	r := setupRouter(caller, mailer, nil)

	assert.Equal(t, http.StatusUnauthorized, post(r, "/alert", "", false).Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/send-email", `{"title":"t","content":"c"}`, false).Code)
	caller.AssertNotCalled(t, "PlaceCall", mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelay_RateLimited(t *testing.T) {
	caller := &mockCaller{}
	caller.On("PlaceCall", mock.Anything).Return("CA1", nil)

	store, err := ratelimit.NewStore(context.Background(), "")
	require.NoError(t, err)
	limiter, err := ratelimit.New(store, "2-M")
	require.NoError(t, err)
	r := setupRouter(caller, nil, ratelimit.Middleware(limiter))

	assert.Equal(t, http.StatusOK, post(r, "/alert", "", true).Code)
	assert.Equal(t, http.StatusOK, post(r, "/alert", "", true).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/alert", "", true).Code)
	caller.AssertNumberOfCalls(t, "PlaceCall", 2)
}
