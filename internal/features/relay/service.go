package relay

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

const subjectPrefix = "Emergency Report: "

type Service struct {
	caller Caller
	mailer Mailer
	log    logrus.FieldLogger
}

func NewService(caller Caller, mailer Mailer, log logrus.FieldLogger) *Service {
	return &Service{caller: caller, mailer: mailer, log: log}
}

// PlaceAlertCall rings the configured destination.
func (s *Service) PlaceAlertCall(ctx context.Context) (string, error) {
	if s.caller == nil {
		return "", apperrors.Relay("Voice alerts are not configured", nil)
	}
	callID, err := s.caller.PlaceCall(ctx)
	if err != nil {
		s.log.WithError(err).Error("alert call failed")
		return "", apperrors.Relay("Failed to place alert call", err)
	}
	s.log.WithField("call_id", callID).Info("alert call placed")
	return callID, nil
}

// SendEmail mails the report notice. Provider errors are logged, callers see
// only that sending failed.
func (s *Service) SendEmail(ctx context.Context, title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return apperrors.Validation("title and content are required")
	}
	if s.mailer == nil {
		return apperrors.Relay("Failed to send report", nil)
	}
	if err := s.mailer.Send(ctx, subjectPrefix+title, content); err != nil {
		s.log.WithError(err).Error("error sending email")
		return apperrors.Relay("Failed to send report", err)
	}
	s.log.WithField("subject", subjectPrefix+title).Info("report email sent")
	return nil
}
