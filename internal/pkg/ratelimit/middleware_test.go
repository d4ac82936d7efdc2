package ratelimit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, rate string, keyFunc func(*gin.Context) string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := NewStore(context.Background(), "")
	require.NoError(t, err)
	lim, err := New(store, rate)
	require.NoError(t, err)

	r := gin.New()
	r.Use(CustomKeyMiddleware(lim, keyFunc))
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func TestMiddleware_RateLimitExceeded(t *testing.T) {
	r := newRouter(t, "1-M", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 429, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, float64(429), body["statusCode"])
	require.Equal(t, "Rate limit exceeded. Try again later.", body["message"])
	data := body["data"].(map[string]any)
	require.Contains(t, data, "retry_after")
	require.Contains(t, data, "reset_time")
}

func TestCustomKeyMiddleware_SeparateBuckets(t *testing.T) {
	r := newRouter(t, "1-M", func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	})

	for _, client := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Client", client)
		r.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code, client)
	}
}

func TestNew_RejectsBadRate(t *testing.T) {
	store, err := NewStore(context.Background(), "")
	require.NoError(t, err)
	_, err = New(store, "lots")
	require.Error(t, err)
}
