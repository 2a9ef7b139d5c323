// Package app assembles the HTTP routing surface: public credential routes,
// the authenticated group, and the verified- and role-gated groups on top.
package app

import (
	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinicore/pkg/auth"
	loginapi "github.com/clinicore/clinicore/pkg/login/api"
	"github.com/clinicore/clinicore/pkg/token"
	"github.com/clinicore/clinicore/pkg/user"
	verificationapi "github.com/clinicore/clinicore/pkg/verification/api"
)

// Deps carries the handlers and services the router composes
type Deps struct {
	Login        *loginapi.Handler
	Verification *verificationapi.Handler
	Tokens       *token.Service
}

// NewRouter builds the API router. Authentication is mandatory for every
// protected route; verified and role gates stack on top of it in that order.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", deps.Login.Register)
		r.Post("/login", deps.Login.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.Tokens))
			r.Use(auth.RequireVerified)

			r.Post("/onboarded", deps.Login.Onboard)
			r.With(auth.RequireRoles(user.RoleAdmin, user.RoleProfessional)).
				Get("/all", deps.Login.GetAllUsers)
		})
	})

	r.Route("/api/user_token", func(r chi.Router) {
		// Verification links arrive from email clients without credentials.
		r.Get("/verify", deps.Verification.Verify)

		// Unverified users must be able to request a token, so only the
		// authentication stage applies here.
		r.With(auth.Authenticate(deps.Tokens)).Post("/generate", deps.Verification.Generate)
	})

	return r
}
