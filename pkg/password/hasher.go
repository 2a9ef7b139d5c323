package password

import "errors"

var (
	// ErrMismatch is returned when a candidate password does not match the stored hash
	ErrMismatch = errors.New("password does not match")

	// ErrMalformedHash is returned when a stored hash cannot be parsed. This is a
	// data-corruption condition, never a wrong password, and callers must keep the
	// two apart when mapping to HTTP responses.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher defines the interface for password hashing implementations
type Hasher interface {
	// Hash hashes a password. Every call produces a different output for the
	// same input because a fresh random salt is generated per call.
	Hash(password string) (string, error)

	// Verify checks the candidate password against the stored hash. It returns
	// nil on a match, ErrMismatch on a well-formed non-matching hash, and
	// ErrMalformedHash (wrapped) when the stored hash cannot be parsed.
	Verify(hashedPassword, password string) error
}
