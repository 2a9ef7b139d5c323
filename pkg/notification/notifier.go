package notification

import "context"

// Notifier dispatches verification emails. Implementations return the
// from-address and the rendered body so callers can keep an audit copy of
// exactly what was sent.
type Notifier interface {
	SendVerification(ctx context.Context, to, verificationLink string) (from string, body string, err error)
}

// VerificationSubject is the subject line of verification emails
const VerificationSubject = "Verify your email address"
