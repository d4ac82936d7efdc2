package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), svc, nil)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
}

func TestSubmitReport_Multipart(t *testing.T) {
	store := NewMemoryStore()
	up := &mockUploader{}
	up.On("UploadImage", mock.Anything, mock.Anything, pngBytes, "image/png").
		Return("https://cdn.example/p.png", nil)
	router := setupRouter(newTestService(store, up, &stubNotifier{}))

	body, ct := multipartBody(t, map[string]string{
		"location":    "Harbour Rd",
		"description": "illegal dumping",
		"category":    "dealer",
	}, "dump.png", pngBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)

	var result struct {
		Report map[string]any `json:"report"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "pending", result.Report["status"])
	assert.Equal(t, "dealer", result.Report["category"])
	assert.Equal(t, "https://cdn.example/p.png", result.Report["image_url"])
	assert.NotContains(t, result.Report, "reward_type")
	assert.NotContains(t, result.Report, "reward_amount")
}

func TestSubmitReport_BlankLocation(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	router := setupRouter(newTestService(store, nil, nil))

	body, ct := multipartBody(t, map[string]string{"location": "  ", "description": "x"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.creates)
}

func TestSubmitReport_UploadFailureIs502(t *testing.T) {
	up := &mockUploader{}
	up.On("UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)
	router := setupRouter(newTestService(NewMemoryStore(), up, nil))

	body, ct := multipartBody(t, map[string]string{"location": "a", "description": "b"}, "p.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "UPLOAD_FAILED", env.Code)
}

func TestListReports(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store, nil, nil)
	_, err := svc.Submit(context.Background(), SubmitInput{Location: "a", Description: "b", WalletAddress: "0xFEED"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), SubmitInput{Location: "c", Description: "d"})
	require.NoError(t, err)

	router := setupRouter(svc)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?wallet_address=0xFEED", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var list []Report
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "0xFEED", list[0].WalletAddress)
}

func TestSubmitReport_ValidationMessageNamesField(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	router := setupRouter(newTestService(store, nil, nil))

	cases := map[string]map[string]string{
		"category must be one of: dealer, user": {
			"location": "Main St", "description": "x", "category": "mayor",
		},
		"description must be at most 5000 characters": {
			"location": "Main St", "description": strings.Repeat("d", 5001),
		},
		"wallet_address must be at most 128 characters": {
			"location": "Main St", "description": "x", "wallet_address": strings.Repeat("f", 129),
		},
		"location is required": {
			"location": "  ", "description": "x",
		},
	}
	for want, fields := range cases {
		body, ct := multipartBody(t, fields, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code, want)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, want, env.Message)
		assert.Equal(t, "VALIDATION_FAILED", env.Code)
	}
	assert.Equal(t, 0, store.creates)
}
