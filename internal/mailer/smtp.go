package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/edusehat/education-service/internal/config"
)

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Enabled() bool {
	return m.cfg.Host != ""
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if !m.Enabled() {
		return fmt.Errorf("smtp mailer is not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient address is required")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	// net/smtp has no context support, honor cancellation before dialing
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	return nil
}
