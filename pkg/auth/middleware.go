package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicore/clinicore/pkg/token"
	"github.com/clinicore/clinicore/pkg/user"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "auth context value " + k.name
}

// AuthUserKey is the request-context key under which Authenticate stores the
// authenticated user.
var AuthUserKey = &contextKey{"AuthUser"}

// AuthUser is the materialized claims of a validated bearer token, attached
// to a single in-flight request and discarded at request end.
type AuthUser struct {
	UserID   string
	Name     string
	Role     user.Role
	Verified bool
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_id", u.UserID),
		slog.String("role", u.Role.String()),
		slog.Bool("verified", u.Verified),
	)
}

// FromClaims materializes an AuthUser from validated token claims. An
// unrecognized role id maps to Patient, the least-privileged role.
func FromClaims(claims *token.Claims) AuthUser {
	role, ok := user.RoleFromID(claims.Role)
	if !ok {
		slog.Warn("Unrecognized role id in token claims, falling back to Patient",
			"user_id", claims.UserID, "role_id", claims.Role)
	}
	return AuthUser{
		UserID:   claims.UserID,
		Name:     claims.Name,
		Role:     role,
		Verified: claims.Verified,
	}
}

// AuthUserFromContext returns the AuthUser attached by Authenticate
func AuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	u, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return u, ok
}

// Authenticate extracts and validates the bearer token from the
// Authorization header and attaches the resulting AuthUser to the request
// context. It must run before RequireVerified and RequireRoles; those stages
// read the AuthUser it attaches.
//
// Response bodies stay generic. The specific failure reason is logged
// server-side only.
func Authenticate(svc *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				slog.Debug("Missing authorization header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				slog.Debug("Invalid authorization header format")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := svc.Validate(tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					slog.Debug("Rejected expired token")
				default:
					slog.Debug("Rejected invalid token", "err", err)
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			authUser := FromClaims(claims)
			ctx := context.WithValue(r.Context(), AuthUserKey, &authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified lets a request through only if the token claims the user's
// email is verified. Independent of role. Must be used after Authenticate.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, ok := AuthUserFromContext(r.Context())
		if !ok {
			slog.Error("AuthUser missing from context; Authenticate must run before RequireVerified")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !authUser.Verified {
			slog.Debug("Unverified user hit a verified-only route", "user", authUser)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRoles returns a middleware that lets a request through only if the
// caller's role is in the allow-set. Must be used after Authenticate.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := AuthUserFromContext(r.Context())
			if !ok {
				slog.Error("AuthUser missing from context; Authenticate must run before RequireRoles")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			allowed := false
			for _, role := range roles {
				if authUser.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				slog.Warn("User lacks required role",
					"user", authUser,
					"requiredRoles", roles)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
