package messaging

import (
	"context"
	"log/slog"
)

// LogMailer and LogTexter stand in for the real channels when SMTP/AWS is
// not configured, mirroring the dev fallback of the hosted deployment.
type LogMailer struct{}

func (LogMailer) SendEmail(_ context.Context, to, subject, body string) error {
	slog.Info("email (dev)", "to", to, "subject", subject, "body", body)
	return nil
}

type LogTexter struct{}

func (LogTexter) SendSMS(_ context.Context, to, body string) error {
	slog.Info("sms (dev)", "to", to, "body", body)
	return nil
}
