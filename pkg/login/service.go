// Package login implements credential registration and password login with
// JWT issuance.
package login

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/password"
	"github.com/clinicore/clinicore/pkg/token"
	"github.com/clinicore/clinicore/pkg/user"
)

// Service wires credential hashing, user persistence and token issuance
type Service struct {
	users  user.Repository
	hasher password.Hasher
	tokens *token.Service
}

// NewService creates a new login service
func NewService(users user.Repository, hasher password.Hasher, tokens *token.Service) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new unverified user with a hashed password. The plain
// password is never persisted.
func (s *Service) Register(ctx context.Context, username, usersurname, email, plainPassword string) error {
	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		slog.Error("Failed to hash password", "username", username, "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	if err := s.users.CreateUser(ctx, username, usersurname, email, hash); err != nil {
		slog.Error("Failed to create user", "username", username, "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to create user")
	}

	slog.Info("User registered", "username", username)
	return nil
}

// Login verifies the credentials and returns a signed access token. Unknown
// usernames and wrong passwords both come back as ErrInvalidCredentials; a
// stored hash that cannot be parsed is an internal fault, not a credential
// failure.
func (s *Service) Login(ctx context.Context, username, plainPassword string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("Login rejected: unknown username", "username", username)
			return "", ErrInvalidCredentials
		}
		slog.Error("Failed to fetch user for login", "username", username, "error", err)
		return "", apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to fetch user")
	}

	if err := s.hasher.Verify(u.PasswordHash, plainPassword); err != nil {
		if errors.Is(err, password.ErrMalformedHash) {
			slog.Error("Stored password hash is malformed", "user_id", u.ID, "error", err)
			return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stored credentials unreadable")
		}
		slog.Warn("Login rejected: wrong password", "user_id", u.ID)
		return "", ErrInvalidCredentials
	}

	jwt, err := s.tokens.Issue(u)
	if err != nil {
		slog.Error("Failed to issue access token", "user_id", u.ID, "error", err)
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to issue token")
	}

	slog.Info("User logged in", "user_id", u.ID, "role", u.Role)
	return jwt, nil
}

// Onboard clears the user's needs-onboarding flag. Tokens issued before the
// change keep the old claims until the next login.
func (s *Service) Onboard(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetNeedsOnboarding(ctx, userID, false); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		slog.Error("Failed to mark user onboarded", "user_id", userID, "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to update user")
	}
	slog.Info("User onboarded", "user_id", userID)
	return nil
}

// GetAllUsers lists every user without password hashes
func (s *Service) GetAllUsers(ctx context.Context) ([]user.User, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to list users")
	}
	return users, nil
}
