// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
merged in first through 'joho/godotenv' when one exists.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (auth, mailer, Redis) via constructors.
  - Fail Fast: Every rejection wraps [apperr.ErrConfiguration].
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/sec"
)

// # Notification Drivers

const (
	// MailDriverSMTP delivers codes through an SMTP relay.
	MailDriverSMTP = "smtp"

	// MailDriverRedis queues codes on a Redis list for an external mail worker.
	MailDriverRedis = "redis"

	// MailDriverLog writes codes to the application log. Development only.
	MailDriverLog = "log"
)

// # Configuration Schema

// Config holds all runtime configuration for the authentication API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// The single administrative principal
	AdminEmail    string `env:"ADMIN_EMAIL,required"`
	AdminPassword string `env:"ADMIN_PASSWORD,required"`
	AdminName     string `env:"ADMIN_NAME"`
	AdminRole     string `env:"ADMIN_ROLE"`

	// Second factor and lockout policy
	CodeTTLMinutes   int `env:"AUTH_CODE_TTL_MINUTES"    envDefault:"10"`
	CodeMaxAttempts  int `env:"AUTH_CODE_MAX_ATTEMPTS"   envDefault:"5"`
	LoginMaxAttempts int `env:"AUTH_LOGIN_MAX_ATTEMPTS"  envDefault:"5"`
	LoginLockMinutes int `env:"AUTH_LOGIN_LOCK_MINUTES"  envDefault:"15"`
	PasswordHashCost int `env:"BCRYPT_COST"              envDefault:"10"`

	// Session token signing
	JWTSecret            string `env:"JWT_SECRET,required"`
	JWTIssuer            string `env:"JWT_ISSUER"             envDefault:"life2food"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"120"`

	// Out-of-band code delivery
	MailDriver   string        `env:"MAIL_DRIVER"   envDefault:"log"`
	MailFrom     string        `env:"MAIL_FROM"     envDefault:"no-reply@life2food.app"`
	MailTimeout  time.Duration `env:"MAIL_TIMEOUT"  envDefault:"10s"`
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`

	// Key-Value store (Redis), only needed by the redis mail driver
	RedisURL       string `env:"REDIS_URL"`
	RedisOutboxKey string `env:"REDIS_OUTBOX_KEY" envDefault:"auth:mail_outbox"`

	// Honour X-Forwarded-For / X-Real-IP only behind a known reverse proxy
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads an optional '.env' file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to read .env file: %v", apperr.ErrConfiguration, err)
	}

	return parse(env.Options{})
}

// LoadFrom parses configuration from the given key/value map instead of the
// process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment variables: %v", apperr.ErrConfiguration, err)
	}

	cfg.MailDriver = strings.ToLower(strings.TrimSpace(cfg.MailDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// # Validation

// Validate checks cross-field rules the struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.AdminEmail) == "" || strings.TrimSpace(c.AdminPassword) == "" {
		problems = append(problems, "ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	if len(c.AdminPassword) > sec.MaxSecretBytes {
		problems = append(problems, fmt.Sprintf("ADMIN_PASSWORD must be at most %d bytes", sec.MaxSecretBytes))
	}

	positives := map[string]int{
		"AUTH_CODE_TTL_MINUTES":   c.CodeTTLMinutes,
		"AUTH_CODE_MAX_ATTEMPTS":  c.CodeMaxAttempts,
		"AUTH_LOGIN_MAX_ATTEMPTS": c.LoginMaxAttempts,
		"AUTH_LOGIN_LOCK_MINUTES": c.LoginLockMinutes,
		"JWT_EXPIRATION_MINUTES":  c.JWTExpirationMinutes,
	}
	for _, name := range slices.Sorted(maps.Keys(positives)) {
		if positives[name] <= 0 {
			problems = append(problems, name+" must be greater than zero")
		}
	}

	switch c.MailDriver {
	case MailDriverSMTP:
		if c.SMTPHost == "" {
			problems = append(problems, "SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	case MailDriverRedis:
		if c.RedisURL == "" {
			problems = append(problems, "REDIS_URL is required when MAIL_DRIVER=redis")
		}
	case MailDriverLog:
		if c.IsProduction() {
			problems = append(problems, "MAIL_DRIVER=log is not allowed in production")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown MAIL_DRIVER %q", c.MailDriver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// # Derived Durations

// CodeTTL is the lifetime of a verification code.
func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLMinutes) * time.Minute
}

// LoginLockDuration is how long the principal stays locked out.
func (c *Config) LoginLockDuration() time.Duration {
	return time.Duration(c.LoginLockMinutes) * time.Minute
}

// TokenLifetime is the validity window of an issued session token.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
