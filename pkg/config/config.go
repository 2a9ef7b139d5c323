// Package config reads service configuration from the environment with
// cleanenv.
package config

import "github.com/ilyakaznacheev/cleanenv"

// JwtConfig holds access token signing settings
type JwtConfig struct {
	Secret         string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer         string `env:"JWT_ISSUER" env-default:"clinicore"`
	AccessTokenTTL int    `env:"ACCESS_TOKEN_TTL_MINS" env-default:"120"`
}

// EmailConfig holds SMTP settings for outgoing mail
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

// VerificationConfig holds email verification settings
type VerificationConfig struct {
	BaseAPIURL      string `env:"BASE_API_URL" env-default:"http://localhost:4000"`
	TokenExpiryDays int    `env:"TOKEN_EXPIRY_DAYS" env-default:"5"`
}

// Config aggregates every service setting
type Config struct {
	DatabaseConfig     DatabaseConfig
	JwtConfig          JwtConfig
	EmailConfig        EmailConfig
	VerificationConfig VerificationConfig
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
