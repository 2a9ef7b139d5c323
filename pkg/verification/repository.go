package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository handles persistence for verification tokens and the verified
// flag they flip.
type Repository interface {
	// GetOrCreateToken atomically returns the user's existing unexpired token
	// or stores the provided candidate. The boolean reports whether the
	// candidate was stored. Two concurrent calls for the same user observe
	// the same token: at most one semantically active token exists per user.
	GetOrCreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*Token, bool, error)

	// ConsumeToken atomically flips the owning user to verified and deletes
	// the token row. Either both effects happen or neither. An expired,
	// consumed, or unknown token yields ErrTokenNotFound with no side
	// effects.
	ConsumeToken(ctx context.Context, token string) error

	// UserEmail returns the token owner's email address
	UserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// DB is the subset of pgxpool.Pool the repository uses
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository on a pgx pool
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new verification repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateToken implements Repository.GetOrCreateToken. The user row is
// locked for the duration of the transaction so concurrent generates for the
// same user serialize instead of both inserting.
func (r *PostgresRepository) GetOrCreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*Token, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var verified bool
	err = tx.QueryRow(ctx, `
		SELECT verified
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	if verified {
		return nil, false, ErrAlreadyVerified
	}

	var existing Token
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM user_tokens
		WHERE user_id = $1
		AND expires_at > NOW() AT TIME ZONE 'UTC'
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(
		&existing.ID,
		&existing.UserID,
		&existing.Token,
		&existing.ExpiresAt,
		&existing.CreatedAt,
	)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	created := Token{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO user_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, created.ID, created.UserID, created.Token, created.ExpiresAt).Scan(&created.CreatedAt)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &created, true, nil
}

// ConsumeToken implements Repository.ConsumeToken as a single transaction.
func (r *PostgresRepository) ConsumeToken(ctx context.Context, token string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var tokenID, userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id, user_id
		FROM user_tokens
		WHERE token = $1
		AND expires_at > NOW() AT TIME ZONE 'UTC'
		FOR UPDATE
	`, token).Scan(&tokenID, &userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET verified = TRUE
		WHERE id = $1
	`, userID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM user_tokens
		WHERE id = $1
	`, tokenID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	slog.Info("Verification token consumed", "token_id", tokenID, "user_id", userID)
	return nil
}

// UserEmail implements Repository.UserEmail
func (r *PostgresRepository) UserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `
		SELECT email
		FROM users
		WHERE id = $1
	`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return email, nil
}
