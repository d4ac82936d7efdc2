package anchoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

const (
	PathLinkAndReport = "/upload-link-and-report"
	PathReport        = "/upload-report"
)

// ErrNotConfigured is returned when no anchoring endpoint is set.
var ErrNotConfigured = errors.New("anchoring endpoint not configured")

// Payload is the JSON body the anchoring service accepts.
type Payload struct {
	TextData string `json:"textData"`
	URL      string `json:"url,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Route picks the endpoint and payload for a report. Reports with an image
// go to the link-and-report endpoint, text-only reports to the report endpoint.
func Route(description, imageURL string) (string, Payload) {
	if imageURL != "" {
		return PathLinkAndReport, Payload{TextData: description, URL: imageURL}
	}
	return PathReport, Payload{TextData: description}
}

// Forward posts a confirmed report to the anchoring service and returns the
// path it used. Any non-2xx answer is an anchor error.
func (c *Client) Forward(ctx context.Context, description, imageURL string) (string, error) {
	path, payload := Route(description, imageURL)
	if c == nil || c.baseURL == "" {
		return path, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return path, apperrors.Anchor("Failed to encode anchor payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return path, apperrors.Anchor("Failed to build anchor request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return path, apperrors.Anchor("Anchoring service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return path, apperrors.Anchor("Anchoring service rejected report",
			fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return path, nil
}
