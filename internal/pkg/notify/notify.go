package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/muhammedshamil8/CivicGuard/internal/middleware"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// Fixed copy sent for every new report. The report itself stays anonymous
// and is never included in the notification.
const (
	NewReportTitle   = "New Report Submitted"
	NewReportContent = "A new anonymous report has been submitted successfully."
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelAlert Channel = "alert"
)

// Result records one best-effort side effect. Callers may ignore it.
type Result struct {
	Channel   Channel `json:"channel"`
	Attempted bool    `json:"attempted"`
	OK        bool    `json:"ok"`
	Detail    string  `json:"detail,omitempty"`
	Err       error   `json:"-"`
}

// Client talks to the notification relay over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewClient(baseURL, apiKey string, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type relayEnvelope struct {
	Message string `json:"message"`
	Data    struct {
		CallID string `json:"call_id"`
	} `json:"data"`
}

// SendEmail asks the relay to send an email with the given title and content.
func (c *Client) SendEmail(ctx context.Context, title, content string) error {
	body, err := json.Marshal(map[string]string{"title": title, "content": content})
	if err != nil {
		return apperrors.Relay("Failed to encode email request", err)
	}
	_, err = c.post(ctx, "/send-email", body)
	return err
}

// PlaceAlert asks the relay to place the voice alert call and returns the call id.
func (c *Client) PlaceAlert(ctx context.Context) (string, error) {
	env, err := c.post(ctx, "/alert", nil)
	if err != nil {
		return "", err
	}
	return env.Data.CallID, nil
}

// NewReportSubmitted sends the email, waits for it, then places the alert.
// Each step is independent: a failed email does not skip the call.
func (c *Client) NewReportSubmitted(ctx context.Context) []Result {
	if c == nil || c.baseURL == "" {
		return []Result{
			{Channel: ChannelEmail, Detail: "relay not configured"},
			{Channel: ChannelAlert, Detail: "relay not configured"},
		}
	}

	results := make([]Result, 0, 2)

	email := Result{Channel: ChannelEmail, Attempted: true}
	if err := c.SendEmail(ctx, NewReportTitle, NewReportContent); err != nil {
		email.Err = err
		email.Detail = err.Error()
		c.log.WithError(err).Warn("new report email failed")
	} else {
		email.OK = true
	}
	results = append(results, email)

	alert := Result{Channel: ChannelAlert, Attempted: true}
	if callID, err := c.PlaceAlert(ctx); err != nil {
		alert.Err = err
		alert.Detail = err.Error()
		c.log.WithError(err).Warn("new report alert failed")
	} else {
		alert.OK = true
		alert.Detail = callID
	}
	results = append(results, alert)

	return results
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*relayEnvelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.Relay("Failed to build relay request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(middleware.RelayKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Relay("Relay unreachable", err)
	}
	defer resp.Body.Close()

	var env relayEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Relay("Relay rejected request",
			fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, env.Message))
	}
	return &env, nil
}
