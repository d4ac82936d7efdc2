package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/ttacon/libphonenumber"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
)

// Caller places the voice alert call and returns the provider's call id.
type Caller interface {
	PlaceCall(ctx context.Context) (string, error)
}

// Mailer sends a plain text email to the configured recipient.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

type TwilioCaller struct {
	client   *twilio.RestClient
	from     string
	to       string
	voiceURL string
}

func NewTwilioCaller(accountSID, authToken, from, to, voiceURL string) (*TwilioCaller, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials are required")
	}
	if from == "" || to == "" {
		return nil, errors.New("twilio from and to numbers are required")
	}
	from, err := normalizeNumber(from)
	if err != nil {
		return nil, fmt.Errorf("twilio from number: %w", err)
	}
	to, err = normalizeNumber(to)
	if err != nil {
		return nil, fmt.Errorf("twilio to number: %w", err)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioCaller{client: client, from: from, to: to, voiceURL: voiceURL}, nil
}

func (t *TwilioCaller) PlaceCall(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetUrl(t.voiceURL)

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("twilio create call: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// normalizeNumber returns n in E.164. Numbers must carry their country code.
func normalizeNumber(n string) (string, error) {
	p, err := libphonenumber.Parse(n, "")
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("%q is not a valid phone number", n)
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTPMailer(host string, port int, user, password, recipient string) (*SMTPMailer, error) {
	if user == "" || recipient == "" {
		return nil, errors.New("email user and recipient are required")
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
		to:     recipient,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Dial opens and closes one SMTP connection to check credentials.
func (m *SMTPMailer) Dial() error {
	closer, err := m.dialer.Dial()
	if err != nil {
		return err
	}
	return closer.Close()
}
