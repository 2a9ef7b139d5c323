package notification

import (
	"context"
	"fmt"
	"sync"
)

// SentMail captures one MockNotifier dispatch
type SentMail struct {
	To   string
	Link string
	Body string
}

// MockNotifier is a Notifier for tests. It records every dispatch and can be
// made to fail.
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentMail

	From     string
	FailWith error
}

// NewMockNotifier creates a mock notifier with a fixed from-address
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{From: "noreply@clinicore.test"}
}

// SendVerification records the dispatch, or fails with FailWith
func (m *MockNotifier) SendVerification(ctx context.Context, to, verificationLink string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return "", "", m.FailWith
	}
	body := fmt.Sprintf("Verify your email: %s", verificationLink)
	m.sent = append(m.sent, SentMail{To: to, Link: verificationLink, Body: body})
	return m.From, body, nil
}

// Sent returns a copy of every recorded dispatch
func (m *MockNotifier) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
