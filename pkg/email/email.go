package email

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a stored email. Numerically encoded for storage.
type Kind int

const (
	KindVerification Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindVerification:
		return "Verification"
	default:
		return "Unknown"
	}
}

// ID returns the numeric encoding of the kind.
func (k Kind) ID() int {
	return int(k)
}

// KindFromID maps a numeric kind id back to a Kind
func KindFromID(id int) (Kind, bool) {
	switch id {
	case 1:
		return KindVerification, true
	default:
		return 0, false
	}
}

// Record is an audit copy of an outbound email
type Record struct {
	ID        uuid.UUID  `json:"id"`
	FromMail  string     `json:"from_mail"`
	ToMail    string     `json:"to_mail"`
	Subject   string     `json:"mail_subject"`
	Body      string     `json:"mail_body"`
	Kind      Kind       `json:"email_kind"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Store persists audit copies of sent emails. Writers treat failures as
// best-effort: a failed audit write is logged, never propagated into the
// operation that sent the email.
type Store interface {
	Add(ctx context.Context, rec Record) error
}
