package email

import "context"

// Email represents one outbound message.
type Email struct {
	To       []string
	From     string // empty means the sender's configured default
	Subject  string
	TextBody string
	HTMLBody string // optional
}

// Sender delivers emails. The production implementation is SMTPSender;
// tests use MockSender.
type Sender interface {
	// Send delivers the message and returns a provider message id when
	// one is available.
	Send(ctx context.Context, email *Email) (string, error)
}
