package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jinzhu/copier"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/clinicore/clinicore/migrations"
	webapp "github.com/clinicore/clinicore/pkg/app"
	"github.com/clinicore/clinicore/pkg/config"
	"github.com/clinicore/clinicore/pkg/email"
	"github.com/clinicore/clinicore/pkg/login"
	loginapi "github.com/clinicore/clinicore/pkg/login/api"
	"github.com/clinicore/clinicore/pkg/notification"
	"github.com/clinicore/clinicore/pkg/password"
	"github.com/clinicore/clinicore/pkg/token"
	"github.com/clinicore/clinicore/pkg/user"
	"github.com/clinicore/clinicore/pkg/verification"
	verificationapi "github.com/clinicore/clinicore/pkg/verification/api"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed reading configuration", "error", err)
		os.Exit(-1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	if err := migrations.Up(cfg.DatabaseConfig.ToDatabaseURL()); err != nil {
		slog.Error("Failed applying migrations", "error", err)
		os.Exit(-1)
	}

	users := user.NewPostgresRepository(pool)
	hasher := password.NewArgon2Hasher()
	tokens := token.NewService(cfg.JwtConfig.Secret,
		token.WithIssuer(cfg.JwtConfig.Issuer),
		token.WithExpiry(time.Duration(cfg.JwtConfig.AccessTokenTTL)*time.Minute),
	)
	loginService := login.NewService(users, hasher, tokens)

	var smtpConfig notification.SMTPConfig
	copier.Copy(&smtpConfig, &cfg.EmailConfig)
	notifier, err := notification.NewEmailNotifier(smtpConfig,
		notification.WithExpiryDays(cfg.VerificationConfig.TokenExpiryDays))
	if err != nil {
		slog.Error("Failed creating email notifier", "host", smtpConfig.Host, "error", err)
		os.Exit(-1)
	}

	verificationService := verification.NewService(
		verification.NewPostgresRepository(pool),
		email.NewPostgresStore(pool),
		notifier,
		cfg.VerificationConfig.BaseAPIURL,
		verification.WithTokenExpiry(time.Duration(cfg.VerificationConfig.TokenExpiryDays)*24*time.Hour),
	)

	router := webapp.NewRouter(webapp.Deps{
		Login:        loginapi.NewHandler(loginService),
		Verification: verificationapi.NewHandler(verificationService),
		Tokens:       tokens,
	})
	server.R.Mount("/", router)

	server.Run()
}
