package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_GetOrCreateToken(t *testing.T) {
	userID := uuid.New()
	candidate, err := GenerateToken()
	require.NoError(t, err)
	expiresAt := time.Now().UTC().Add(DefaultTokenExpiry)
	createdAt := time.Now().UTC()

	tests := []struct {
		name        string
		setupMock   func(mock pgxmock.PgxPoolIface)
		wantCreated bool
		wantToken   string
		wantErr     error
	}{
		{
			name: "inserts when no pending token exists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT verified FROM users WHERE id = \$1 FOR UPDATE`).
					WithArgs(userID).
					WillReturnRows(pgxmock.NewRows([]string{"verified"}).AddRow(false))
				mock.ExpectQuery(`SELECT id, user_id, token, expires_at, created_at FROM user_tokens`).
					WithArgs(userID).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`INSERT INTO user_tokens`).
					WithArgs(pgxmock.AnyArg(), userID, candidate, expiresAt).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(&createdAt))
				mock.ExpectCommit()
			},
			wantCreated: true,
			wantToken:   candidate,
		},
		{
			name: "reuses the pending token",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT verified FROM users WHERE id = \$1 FOR UPDATE`).
					WithArgs(userID).
					WillReturnRows(pgxmock.NewRows([]string{"verified"}).AddRow(false))
				mock.ExpectQuery(`SELECT id, user_id, token, expires_at, created_at FROM user_tokens`).
					WithArgs(userID).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
						AddRow(uuid.New(), userID, "existingtoken", expiresAt, &createdAt))
				mock.ExpectCommit()
			},
			wantCreated: false,
			wantToken:   "existingtoken",
		},
		{
			name: "already verified user rolls back before touching tokens",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT verified FROM users WHERE id = \$1 FOR UPDATE`).
					WithArgs(userID).
					WillReturnRows(pgxmock.NewRows([]string{"verified"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErr: ErrAlreadyVerified,
		},
		{
			name: "unknown user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT verified FROM users WHERE id = \$1 FOR UPDATE`).
					WithArgs(userID).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPostgresRepository(mock)
			tok, created, err := repo.GetOrCreateToken(context.Background(), userID, candidate, expiresAt)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
				assert.Equal(t, tt.wantToken, tok.Token)
				assert.Equal(t, userID, tok.UserID)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresRepository_ConsumeToken(t *testing.T) {
	tokenID := uuid.New()
	userID := uuid.New()
	const token = "sometokenvalue"

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "flips verified and deletes the token in one transaction",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, user_id FROM user_tokens WHERE token = \$1`).
					WithArgs(token).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id"}).AddRow(tokenID, userID))
				mock.ExpectExec(`UPDATE users SET verified = TRUE`).
					WithArgs(userID).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`DELETE FROM user_tokens`).
					WithArgs(tokenID).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unknown or expired token",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, user_id FROM user_tokens WHERE token = \$1`).
					WithArgs(token).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: ErrTokenNotFound,
		},
		{
			name: "update failure rolls everything back",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, user_id FROM user_tokens WHERE token = \$1`).
					WithArgs(token).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id"}).AddRow(tokenID, userID))
				mock.ExpectExec(`UPDATE users SET verified = TRUE`).
					WithArgs(userID).
					WillReturnError(errors.New("connection lost"))
				mock.ExpectRollback()
			},
			errMsg: "connection lost",
		},
		{
			name: "delete failure rolls everything back",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, user_id FROM user_tokens WHERE token = \$1`).
					WithArgs(token).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id"}).AddRow(tokenID, userID))
				mock.ExpectExec(`UPDATE users SET verified = TRUE`).
					WithArgs(userID).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`DELETE FROM user_tokens`).
					WithArgs(tokenID).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			errMsg: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPostgresRepository(mock)
			err = repo.ConsumeToken(context.Background(), token)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresRepository_UserEmail(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the address", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectQuery(`SELECT email FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("alice@example.com"))

		repo := NewPostgresRepository(mock)
		email, err := repo.UserEmail(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("unknown user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectQuery(`SELECT email FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		repo := NewPostgresRepository(mock)
		_, err = repo.UserEmail(context.Background(), userID)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
