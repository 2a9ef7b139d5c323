package token

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicore/clinicore/pkg/user"
)

// DefaultAccessTokenExpiry is the absolute lifetime of an issued token.
const DefaultAccessTokenExpiry = 120 * time.Minute

var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// embedded expiry has passed
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned when a token's signature or structure is invalid
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload carried inside an issued token. It holds everything
// the authorization pipeline needs so that no database round trip happens per
// request; the flip side is that a token stays valid until its embedded
// expiry regardless of later account changes.
type Claims struct {
	UserID   string `json:"uuid"`
	Name     string `json:"name"`
	Role     int    `json:"role"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// Service issues and validates stateless HS256-signed bearer tokens. There is
// no server-side session store and no revocation list.
type Service struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithExpiry overrides the default token lifetime. Expiry stays absolute,
// embedded at issuance, never sliding.
func WithExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		s.expiry = expiry
	}
}

// WithIssuer sets the iss claim on issued tokens
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// NewService creates a token Service signing with the given shared secret
func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret: []byte(secret),
		expiry: DefaultAccessTokenExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a signed token carrying the user's identity, display name,
// role id and verified flag
func (s *Service) Issue(u *user.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   u.ID.String(),
		Name:     u.Username,
		Role:     u.Role.ID(),
		Verified: u.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := tok.SignedString(s.secret)
	if err != nil {
		slog.Error("Failed to sign JWT claims", "err", err)
		return "", err
	}
	return ss, nil
}

// Validate parses and verifies a token string. Failures are distinguished so
// the HTTP boundary can report them distinctly: ErrTokenExpired for a valid
// signature past its expiry, ErrTokenInvalid for everything else. A missing
// or garbled Authorization header is the pipeline's concern, not Validate's.
func (s *Service) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		slog.Debug("Failed to parse token", "err", err)
		return nil, ErrTokenInvalid
	}

	if !tok.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
