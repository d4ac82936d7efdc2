package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

type relayStub struct {
	mu        sync.Mutex
	calls     []string
	keys      []string
	emails    []map[string]string
	emailCode int
	alertCode int
}

func (s *relayStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.URL.Path)
	s.keys = append(s.keys, r.Header.Get("X-Relay-Key"))

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/send-email":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.emails = append(s.emails, body)
		w.WriteHeader(s.emailCode)
		_, _ = w.Write([]byte(`{"success":true,"message":"Report sent successfully"}`))
	case "/alert":
		w.WriteHeader(s.alertCode)
		_, _ = w.Write([]byte(`{"success":true,"data":{"call_id":"CA123"}}`))
	default:
		w.WriteHeader(404)
	}
}

func TestNewReportSubmitted_EmailThenAlert(t *testing.T) {
	stub := &relayStub{emailCode: 200, alertCode: 200}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	client := NewClient(srv.URL, "k", logger.Discard())
	results := client.NewReportSubmitted(t.Context())

	require.Equal(t, []string{"/send-email", "/alert"}, stub.calls)
	require.Equal(t, []string{"k", "k"}, stub.keys)
	require.Equal(t, NewReportTitle, stub.emails[0]["title"])
	require.Equal(t, NewReportContent, stub.emails[0]["content"])

	require.Len(t, results, 2)
	assert.Equal(t, ChannelEmail, results[0].Channel)
	assert.True(t, results[0].OK)
	assert.Equal(t, ChannelAlert, results[1].Channel)
	assert.True(t, results[1].OK)
	assert.Equal(t, "CA123", results[1].Detail)
}

func TestNewReportSubmitted_EmailFailureStillAlerts(t *testing.T) {
	stub := &relayStub{emailCode: 500, alertCode: 200}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	results := NewClient(srv.URL, "", logger.Discard()).NewReportSubmitted(t.Context())

	require.Equal(t, []string{"/send-email", "/alert"}, stub.calls)
	assert.True(t, results[0].Attempted)
	assert.False(t, results[0].OK)
	assert.True(t, apperrors.Is(results[0].Err, apperrors.KindRelay))
	assert.True(t, results[1].OK)
}

func TestNewReportSubmitted_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	results := NewClient(url, "", logger.Discard()).NewReportSubmitted(t.Context())
	for _, r := range results {
		assert.True(t, r.Attempted)
		assert.False(t, r.OK)
		assert.Error(t, r.Err)
	}
}

func TestNewReportSubmitted_NotConfigured(t *testing.T) {
	results := NewClient("", "", logger.Discard()).NewReportSubmitted(t.Context())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Attempted)
	}
}
