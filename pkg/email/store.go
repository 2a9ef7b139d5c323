package email

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store on a pgx pool
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a new email audit store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add persists an audit copy of a sent email
func (s *PostgresStore) Add(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO emails (id, from_mail, to_mail, mail_subject, mail_body, email_kind)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query, uuid.New(), rec.FromMail, rec.ToMail, rec.Subject, rec.Body, rec.Kind.ID())
	return err
}

// InMemStore is an in-memory Store for tests
type InMemStore struct {
	mu      sync.Mutex
	records []Record

	// FailWith makes every Add return this error, for exercising the
	// best-effort contract.
	FailWith error
}

// NewInMemStore creates an empty in-memory store
func NewInMemStore() *InMemStore {
	return &InMemStore{}
}

// Add records the email in memory
func (s *InMemStore) Add(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	rec.ID = uuid.New()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything stored so far
func (s *InMemStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
