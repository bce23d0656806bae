package email

import (
	"context"
	"sync"
)

// MockSender records sent emails for tests. The zero value is ready to use.
type MockSender struct {
	mu   sync.Mutex
	Sent []*Email

	// SendFunc overrides the default behavior when set.
	SendFunc func(ctx context.Context, email *Email) (string, error)
}

var _ Sender = (*MockSender)(nil)

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, email)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return "mock-message-id", nil
}

// Last returns the most recently sent email, or nil.
func (m *MockSender) Last() *Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}
