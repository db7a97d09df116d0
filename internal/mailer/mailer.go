package mailer

import "context"

// Message is a plain-text outgoing mail
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers outgoing mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error

	// Enabled reports whether this mailer actually delivers mail. The
	// notification sweep still marks rows processed when delivery is
	// disabled.
	Enabled() bool
}
