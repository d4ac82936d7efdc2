package anchoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

func TestRoute(t *testing.T) {
	path, p := Route("broken streetlight", "https://img.example/x.jpg")
	assert.Equal(t, PathLinkAndReport, path)
	assert.Equal(t, Payload{TextData: "broken streetlight", URL: "https://img.example/x.jpg"}, p)

	path, p = Route("broken streetlight", "")
	assert.Equal(t, PathReport, path)
	assert.Equal(t, Payload{TextData: "broken streetlight"}, p)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"textData":"broken streetlight"}`, string(raw))
}

func TestForward(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	path, err := c.Forward(t.Context(), "pothole", "https://img.example/p.png")
	require.NoError(t, err)
	assert.Equal(t, PathLinkAndReport, path)
	assert.Equal(t, PathLinkAndReport, gotPath)
	assert.Equal(t, map[string]string{"textData": "pothole", "url": "https://img.example/p.png"}, gotBody)
}

func TestForward_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Forward(t.Context(), "pothole", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAnchor))
	assert.Contains(t, err.Error(), "503")
}

func TestForward_NotConfigured(t *testing.T) {
	path, err := NewClient("", 0).Forward(t.Context(), "pothole", "")
	assert.Equal(t, PathReport, path)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
