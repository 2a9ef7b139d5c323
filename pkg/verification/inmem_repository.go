package verification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/pkg/user"
)

// UserStates is the slice of user persistence the in-memory repository needs:
// verified-state reads and writes plus email lookup. user.InMemRepository
// implements it.
type UserStates interface {
	VerificationStatus(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	Email(ctx context.Context, userID uuid.UUID) (string, error)
}

// InMemRepository is an in-memory Repository for tests and local development.
// A single mutex serializes GetOrCreateToken, giving the same
// one-active-token-per-user guarantee as the Postgres transaction.
type InMemRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*Token // keyed by token id
	users  UserStates
}

// NewInMemRepository creates an in-memory repository over the given user state
func NewInMemRepository(users UserStates) *InMemRepository {
	return &InMemRepository{
		tokens: make(map[uuid.UUID]*Token),
		users:  users,
	}
}

// GetOrCreateToken implements Repository.GetOrCreateToken
func (r *InMemRepository) GetOrCreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*Token, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verified, err := r.users.VerificationStatus(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	if verified {
		return nil, false, ErrAlreadyVerified
	}

	now := time.Now().UTC()
	for _, t := range r.tokens {
		if t.UserID == userID && t.ExpiresAt.After(now) {
			copied := *t
			return &copied, false, nil
		}
	}

	created := &Token{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: &now,
	}
	r.tokens[created.ID] = created

	copied := *created
	return &copied, true, nil
}

// ConsumeToken implements Repository.ConsumeToken
func (r *InMemRepository) ConsumeToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, t := range r.tokens {
		if t.Token == token && t.ExpiresAt.After(now) {
			if err := r.users.MarkVerified(ctx, t.UserID); err != nil {
				return err
			}
			delete(r.tokens, id)
			return nil
		}
	}
	return ErrTokenNotFound
}

// UserEmail implements Repository.UserEmail
func (r *InMemRepository) UserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	addr, err := r.users.Email(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return addr, nil
}

// ActiveTokens returns the unexpired tokens currently held for a user. Test
// helper.
func (r *InMemRepository) ActiveTokens(userID uuid.UUID) []Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var out []Token
	for _, t := range r.tokens {
		if t.UserID == userID && t.ExpiresAt.After(now) {
			out = append(out, *t)
		}
	}
	return out
}

// ExpireTokens force-expires every token held for a user. Test helper.
func (r *InMemRepository) ExpireTokens(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.UserID == userID {
			t.ExpiresAt = time.Now().UTC().Add(-1 * time.Minute)
		}
	}
}
