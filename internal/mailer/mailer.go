package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Mailer delivers outbound email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Noop discards every message. Used when no mail provider is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }
