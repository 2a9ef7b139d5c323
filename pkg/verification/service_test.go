package verification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/pkg/email"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/notification"
	"github.com/clinicore/clinicore/pkg/user"
)

type fixture struct {
	users    *user.InMemRepository
	repo     *InMemRepository
	emails   *email.InMemStore
	notifier *notification.MockNotifier
	service  *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	users := user.NewInMemRepository()
	repo := NewInMemRepository(users)
	emails := email.NewInMemStore()
	notifier := notification.NewMockNotifier()
	return &fixture{
		users:    users,
		repo:     repo,
		emails:   emails,
		notifier: notifier,
		service:  NewService(repo, emails, notifier, "http://localhost:8080"),
	}
}

func (f *fixture) addUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.users.CreateUser(ctx, username, "surname", username+"@example.com", "hash"))
	u, err := f.users.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	return u.ID
}

func TestService_GenerateAndNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "alice")

		tok, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, tok.Token, 256)
		assert.Equal(t, userID, tok.UserID)

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "alice@example.com", sent[0].To)
		assert.Contains(t, sent[0].Link, tok.Token)

		records := f.emails.Records()
		require.Len(t, records, 1)
		assert.Equal(t, "alice@example.com", records[0].ToMail)
		assert.Equal(t, email.KindVerification, records[0].Kind)
		assert.Contains(t, records[0].Body, tok.Token)
	})

	t.Run("IdempotentReuse", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "bob")

		tok1, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)
		tok2, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)

		assert.Equal(t, tok1.Token, tok2.Token, "Second call must reuse the pending token")
		assert.Len(t, f.repo.ActiveTokens(userID), 1, "No duplicate token rows")

		// Both emails carry the same link.
		sent := f.notifier.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, sent[0].Link, sent[1].Link)
	})

	t.Run("ExpiredTokenReplaced", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "carol")

		tok1, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)

		f.repo.ExpireTokens(userID)

		tok2, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, tok1.Token, tok2.Token, "An expired token is not reused")
	})

	t.Run("AlreadyVerified", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "dave")
		require.NoError(t, f.users.MarkVerified(ctx, userID))

		_, err := f.service.GenerateAndNotify(ctx, userID)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		assert.Empty(t, f.repo.ActiveTokens(userID), "No token row for a verified user")
		assert.Empty(t, f.notifier.Sent(), "No email for a verified user")
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.GenerateAndNotify(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Empty(t, f.notifier.Sent())
	})

	t.Run("EmailFailureLeavesReusableToken", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "erin")
		f.notifier.FailWith = errors.New("smtp unreachable")

		_, err := f.service.GenerateAndNotify(ctx, userID)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExternalService, apperrors.GetCode(err))

		// Token survived the dispatch failure.
		tokens := f.repo.ActiveTokens(userID)
		require.Len(t, tokens, 1)

		// Retry reuses it and succeeds.
		f.notifier.FailWith = nil
		tok, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, tokens[0].Token, tok.Token)
	})

	t.Run("AuditFailureIsBestEffort", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "frank")
		f.emails.FailWith = errors.New("emails table gone")

		tok, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err, "Audit write failure must not fail the operation")
		assert.NotNil(t, tok)
		assert.Len(t, f.notifier.Sent(), 1)
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("ConsumesExactlyOnce", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "grace")

		tok, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)

		require.NoError(t, f.service.Verify(ctx, tok.Token))

		verified, err := f.users.VerificationStatus(ctx, userID)
		require.NoError(t, err)
		assert.True(t, verified, "Verify must flip the user to verified")
		assert.Empty(t, f.repo.ActiveTokens(userID), "Token row must be gone")

		// Second call with the same string fails: single use.
		err = f.service.Verify(ctx, tok.Token)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		f := setup(t)
		err := f.service.Verify(ctx, "deadbeef")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		f := setup(t)
		userID := f.addUser(t, "heidi")

		tok, err := f.service.GenerateAndNotify(ctx, userID)
		require.NoError(t, err)
		f.repo.ExpireTokens(userID)

		err = f.service.Verify(ctx, tok.Token)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		verified, err := f.users.VerificationStatus(ctx, userID)
		require.NoError(t, err)
		assert.False(t, verified, "An expired token must not verify the user")
	})
}

func TestService_ConcurrentGenerate(t *testing.T) {
	// N concurrent generates for the same user must all observe the same
	// token value and leave exactly one active token behind.
	f := setup(t)
	userID := f.addUser(t, "ivan")
	ctx := context.Background()

	const n = 16
	tokens := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tok, err := f.service.GenerateAndNotify(ctx, userID)
			if assert.NoError(t, err) {
				tokens[i] = tok.Token
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, tokens[0], tokens[i], "All concurrent calls observe one token")
	}
	assert.Len(t, f.repo.ActiveTokens(userID), 1)
}
