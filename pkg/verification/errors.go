package verification

import "errors"

var (
	// ErrTokenNotFound is returned when no unexpired verification token
	// matches; a consumed or expired token is indistinguishable from one that
	// never existed
	ErrTokenNotFound = errors.New("verification token not found")

	// ErrAlreadyVerified is returned when a verified user requests a new token
	ErrAlreadyVerified = errors.New("user is already verified")

	// ErrUserNotFound is returned when the user does not exist
	ErrUserNotFound = errors.New("user not found")
)
