package mailer

import (
	"context"
	"log/slog"
)

// ConsoleMailer logs mail instead of delivering it. Used in development and
// as the fallback when SMTP is not configured.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Enabled() bool {
	return false
}

func (m *ConsoleMailer) Send(ctx context.Context, msg *Message) error {
	m.logger.InfoContext(ctx, "Mail delivery skipped (console mailer)",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
