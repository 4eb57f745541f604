// Package messaging wraps the outbound email and SMS channels. Every
// implementation is fire-and-forget friendly: callers hand sends to the
// Dispatcher so a slow or failing channel never blocks a request.
package messaging

import "context"

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}
