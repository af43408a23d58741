package mailer

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of a relay. Used for local
// development with EMAIL_DRIVER=log.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("email (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
