package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/pkg/email"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/notification"
)

// DefaultTokenExpiry is how long a verification token stays valid
const DefaultTokenExpiry = 5 * 24 * time.Hour

// Service orchestrates the email verification lifecycle: token generation
// with idempotent reuse, email dispatch, and atomic consumption.
type Service struct {
	repo        Repository
	emails      email.Store
	notifier    notification.Notifier
	baseURL     string
	tokenExpiry time.Duration
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithTokenExpiry sets the token expiration duration
func WithTokenExpiry(expiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.tokenExpiry = expiry
	}
}

// NewService creates a new verification service. baseURL is the public URL
// the verification link is built on.
func NewService(repo Repository, emails email.Store, notifier notification.Notifier, baseURL string, opts ...ServiceOption) *Service {
	s := &Service{
		repo:        repo,
		emails:      emails,
		notifier:    notifier,
		baseURL:     baseURL,
		tokenExpiry: DefaultTokenExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAndNotify mints (or reuses) the user's verification token and
// sends the verification email. Repeated calls for the same user reuse the
// pending token, so retrying after a failed email dispatch is safe and sends
// the same link. An already-verified user is a conflict, reported before any
// email goes out.
func (s *Service) GenerateAndNotify(ctx context.Context, userID uuid.UUID) (*Token, error) {
	candidate, err := GenerateToken()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate verification token")
	}
	expiresAt := time.Now().UTC().Add(s.tokenExpiry)

	tok, created, err := s.repo.GetOrCreateToken(ctx, userID, candidate, expiresAt)
	if err != nil {
		if errors.Is(err, ErrAlreadyVerified) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		slog.Error("Failed to get or create verification token", "user_id", userID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to store verification token")
	}
	if created {
		slog.Info("Verification token created", "user_id", userID, "token_id", tok.ID, "expires_at", tok.ExpiresAt)
	} else {
		slog.Info("Reusing pending verification token", "user_id", userID, "token_id", tok.ID)
	}

	addr, err := s.repo.UserEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		slog.Error("Failed to fetch user email", "user_id", userID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to fetch user email")
	}

	link := fmt.Sprintf("%s/api/user_token/verify?token=%s", s.baseURL, tok.Token)
	from, body, err := s.notifier.SendVerification(ctx, addr, link)
	if err != nil {
		// The token is already stored, so a retry reuses it.
		slog.Error("Failed to send verification email", "user_id", userID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "failed to send verification email")
	}

	// Audit record is best effort: a failure here must not invalidate the
	// token or the already-sent email.
	err = s.emails.Add(ctx, email.Record{
		FromMail: from,
		ToMail:   addr,
		Subject:  notification.VerificationSubject,
		Body:     body,
		Kind:     email.KindVerification,
	})
	if err != nil {
		slog.Error("Failed to record verification email", "user_id", userID, "error", err)
	}

	return tok, nil
}

// Verify consumes a verification token, flipping the owning user to
// verified. Consumption is atomic and single-use: a second call with the
// same token fails with ErrTokenNotFound.
func (s *Service) Verify(ctx context.Context, token string) error {
	err := s.repo.ConsumeToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			slog.Warn("Rejected unknown or expired verification token")
			return err
		}
		slog.Error("Failed to consume verification token", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to verify token")
	}

	slog.Info("User token verified")
	return nil
}
