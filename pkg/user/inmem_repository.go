package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory Repository for tests and local development.
// It also implements the verification package's user-state collaborator
// (VerificationStatus, MarkVerified, Email).
type InMemRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

// NewInMemRepository creates an empty in-memory repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		users: make(map[uuid.UUID]*User),
	}
}

// CreateUser creates a new unverified Patient user
func (r *InMemRepository) CreateUser(ctx context.Context, username, usersurname, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	u := &User{
		ID:              uuid.New(),
		Username:        username,
		Usersurname:     usersurname,
		Email:           email,
		Role:            RolePatient,
		Verified:        false,
		NeedsOnboarding: true,
		PasswordHash:    passwordHash,
		CreatedAt:       &now,
	}
	r.users[u.ID] = u
	return nil
}

// GetUserByUsername retrieves a user by username
func (r *InMemRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByID retrieves a user by id
func (r *InMemRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// GetAllUsers returns all users ordered by creation time
func (r *InMemRepository) GetAllUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		copied.PasswordHash = ""
		users = append(users, copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(*users[j].CreatedAt)
	})
	return users, nil
}

// SetNeedsOnboarding updates the onboarding flag
func (r *InMemRepository) SetNeedsOnboarding(ctx context.Context, id uuid.UUID, needsOnboarding bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.NeedsOnboarding = needsOnboarding
	return nil
}

// SetRole updates a user's role. Test helper; role changes are an admin
// concern outside the auth core.
func (r *InMemRepository) SetRole(ctx context.Context, id uuid.UUID, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

// VerificationStatus reports whether the user's email is verified
func (r *InMemRepository) VerificationStatus(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return false, ErrUserNotFound
	}
	return u.Verified, nil
}

// MarkVerified flips the user's verified flag to true
func (r *InMemRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Verified = true
	return nil
}

// Email returns the user's email address
func (r *InMemRepository) Email(ctx context.Context, id uuid.UUID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.Email, nil
}
