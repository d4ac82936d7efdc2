package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammedshamil8/CivicGuard/internal/config"
	"github.com/muhammedshamil8/CivicGuard/internal/features/relay"
	"github.com/muhammedshamil8/CivicGuard/internal/features/reports"
	"github.com/muhammedshamil8/CivicGuard/internal/features/review"
	"github.com/muhammedshamil8/CivicGuard/internal/features/session"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/jwt"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/ratelimit"
)

type unreachableStore struct {
	*reports.MemoryStore
}

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

func newRouter(t *testing.T, store reports.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		LoginPath:       "/login",
		RateLimitSubmit: "2-M",
		RateLimitLogin:  "10-M",
	}
	limits, err := ratelimit.NewStore(context.Background(), "")
	require.NoError(t, err)

	log := logger.Discard()
	deps := Dependencies{
		Config:   cfg,
		Store:    store,
		Reports:  reports.NewService(store, nil, nil, reports.Options{DefaultWalletAddress: "0xdefault"}, log),
		Review:   review.NewService(store, nil, log),
		Sessions: session.NewManager(session.DisabledProvider{}, jwt.DefaultConfig("test-secret", time.Hour), log),
		Limits:   limits,
	}

	r := gin.New()
	require.NoError(t, SetupRoutes(r, deps))
	return r
}

func TestHealth(t *testing.T) {
	r := newRouter(t, reports.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data["status"])
	assert.EqualValues(t, 0, body.Data["active_sessions"])
}

func TestHealth_StoreUnreachable(t *testing.T) {
	r := newRouter(t, unreachableStore{reports.NewMemoryStore()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORE_UNAVAILABLE")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r := newRouter(t, reports.NewMemoryStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_REQUIRED")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/blacklist", nil)
	req.Header.Set("Accept", "text/html")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSubmitIsPublicAndRateLimited(t *testing.T) {
	store := reports.NewMemoryStore()
	r := newRouter(t, store)

	submit := func() *httptest.ResponseRecorder {
		form := "location=Main+St&description=Broken+streetlight"
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, submit().Code)
	assert.Equal(t, http.StatusCreated, submit().Code)
	assert.Equal(t, http.StatusTooManyRequests, submit().Code)

	list, err := store.List(context.Background(), reports.ListFilter{WalletAddress: "0xdefault"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSetupRoutes_BadRate(t *testing.T) {
	limits, err := ratelimit.NewStore(context.Background(), "")
	require.NoError(t, err)

	err = SetupRoutes(gin.New(), Dependencies{
		Config: &config.Config{RateLimitSubmit: "lots", RateLimitLogin: "10-M"},
		Limits: limits,
	})
	assert.Error(t, err)
}

func newRelayRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	limits, err := ratelimit.NewStore(context.Background(), "")
	require.NoError(t, err)

	r := gin.New()
	cfg := &config.Config{RateLimitRelay: "2-M", TrustedProxies: trusted}
	require.NoError(t, SetupRelayRoutes(r, relay.NewService(nil, nil, logger.Discard()), cfg, limits))
	return r
}

func alertFrom(r *gin.Engine, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/alert", nil)
	req.RemoteAddr = "203.0.113.7:40000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRelayLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newRelayRouter(t, nil)

	limited := 0
	for i := 0; i < 10; i++ {
		if alertFrom(r, fmt.Sprintf("198.51.100.%d", i)) == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 8, limited)
}

func TestRelayLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	r := newRelayRouter(t, []string{"203.0.113.0/24"})

	for i := 0; i < 5; i++ {
		assert.NotEqual(t, http.StatusTooManyRequests, alertFrom(r, fmt.Sprintf("198.51.100.%d", i)))
	}
	assert.NotEqual(t, http.StatusTooManyRequests, alertFrom(r, "198.51.100.200"))
	assert.NotEqual(t, http.StatusTooManyRequests, alertFrom(r, "198.51.100.200"))
	assert.Equal(t, http.StatusTooManyRequests, alertFrom(r, "198.51.100.200"))
}

func TestSubmitLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	r := newRouter(t, reports.NewMemoryStore())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports",
			strings.NewReader("location=Main+St&description=Broken+streetlight"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}
