package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/pkg/user"
)

func testUser() *user.User {
	return &user.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "testuser@example.com",
		Role:     user.RoleProfessional,
		Verified: true,
	}
}

func TestService_IssueAndValidate(t *testing.T) {
	svc := NewService("test-secret")
	u := testUser()

	tokenStr, err := svc.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, u.Username, claims.Name)
	assert.Equal(t, user.RoleProfessional.ID(), claims.Role)
	assert.True(t, claims.Verified)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultAccessTokenExpiry), claims.ExpiresAt.Time, 2*time.Second,
		"Token expiry should be 120 minutes from issuance")
}

func TestService_ValidateExpired(t *testing.T) {
	svc := NewService("test-secret", WithExpiry(-1*time.Minute))

	tokenStr, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_ValidateInvalid(t *testing.T) {
	svc := NewService("test-secret")

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewService("other-secret")
		tokenStr, err := other.Issue(testUser())
		require.NoError(t, err)

		_, err = svc.Validate(tokenStr)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("TamperedPayload", func(t *testing.T) {
		tokenStr, err := svc.Issue(testUser())
		require.NoError(t, err)

		tampered := tokenStr[:len(tokenStr)-4] + "AAAA"
		_, err = svc.Validate(tampered)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestService_UnverifiedUserClaims(t *testing.T) {
	svc := NewService("test-secret")
	u := testUser()
	u.Verified = false
	u.Role = user.RolePatient

	tokenStr, err := svc.Issue(u)
	require.NoError(t, err)

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.False(t, claims.Verified)
	assert.Equal(t, user.RolePatient.ID(), claims.Role)
}
