package password

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Hasher implements Hasher using Argon2id
type Argon2Hasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// NewArgon2Hasher creates a new Argon2Hasher with default parameters
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		memory:      64 * 1024, // 64MB
		iterations:  3,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
	}
}

// Hash implements Hasher.Hash
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.iterations,
		h.memory,
		h.parallelism,
		h.keyLength,
	)

	b64Salt := base64Encode(salt)
	b64Hash := base64Encode(hash)

	// Format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
	// Parameters and salt are embedded so verification is self-describing.
	encodedHash := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.iterations,
		h.parallelism,
		b64Salt,
		b64Hash,
	)

	return encodedHash, nil
}

// Verify implements Hasher.Verify
func (h *Argon2Hasher) Verify(hashedPassword, password string) error {
	if password == "" || hashedPassword == "" {
		return fmt.Errorf("%w: password and hash cannot be empty", ErrMalformedHash)
	}

	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 {
		return fmt.Errorf("%w: invalid hash format", ErrMalformedHash)
	}

	if parts[1] != "argon2id" {
		return fmt.Errorf("%w: incompatible hash algorithm", ErrMalformedHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fmt.Errorf("%w: invalid version segment", ErrMalformedHash)
	}
	if version != argon2.Version {
		return fmt.Errorf("%w: incompatible argon2id version", ErrMalformedHash)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fmt.Errorf("%w: invalid parameter segment", ErrMalformedHash)
	}

	salt, err := base64Decode(parts[4])
	if err != nil {
		return fmt.Errorf("%w: invalid salt encoding", ErrMalformedHash)
	}

	decodedHash, err := base64Decode(parts[5])
	if err != nil {
		return fmt.Errorf("%w: invalid hash encoding", ErrMalformedHash)
	}

	// Recompute with the parameters embedded in the stored hash
	computedHash := argon2.IDKey(
		[]byte(password),
		salt,
		iterations,
		memory,
		parallelism,
		uint32(len(decodedHash)),
	)

	if subtle.ConstantTimeCompare(decodedHash, computedHash) != 1 {
		return ErrMismatch
	}

	return nil
}
