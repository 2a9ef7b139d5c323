package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository handles persistence for users. Domain CRUD beyond what the auth
// core needs (create, credential lookup, verified/onboarding state) lives with
// the owning services and is not part of this surface.
type Repository interface {
	CreateUser(ctx context.Context, username, usersurname, email, passwordHash string) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	SetNeedsOnboarding(ctx context.Context, id uuid.UUID, needsOnboarding bool) error
}

// DB is the subset of pgxpool.Pool the repository uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository on a pgx pool
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new user repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser creates a new user. Role defaults to Patient and verified to
// false at the storage layer.
func (r *PostgresRepository) CreateUser(ctx context.Context, username, usersurname, email, passwordHash string) error {
	query := `
		INSERT INTO users (id, username, usersurname, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, uuid.New(), username, usersurname, email, passwordHash)
	return err
}

// GetUserByUsername retrieves a user by username
func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, usersurname, email, role, verified, needs_onboarding, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

// GetUserByID retrieves a user by id
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, username, usersurname, email, role, verified, needs_onboarding, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetAllUsers retrieves all users. Password hashes are not selected.
func (r *PostgresRepository) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, usersurname, email, role, verified, needs_onboarding, '', created_at
		FROM users
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// SetNeedsOnboarding updates the onboarding flag for a user
func (r *PostgresRepository) SetNeedsOnboarding(ctx context.Context, id uuid.UUID, needsOnboarding bool) error {
	query := `
		UPDATE users
		SET needs_onboarding = $2
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, needsOnboarding)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*User, error) {
	var u User
	var roleID int
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Usersurname,
		&u.Email,
		&roleID,
		&u.Verified,
		&u.NeedsOnboarding,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Unrecognized role ids decode to Patient, the least-privileged role.
	u.Role, _ = RoleFromID(roleID)

	return &u, nil
}
