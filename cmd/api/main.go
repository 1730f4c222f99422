// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the admin authentication HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and an optional .env).
//  3. Build the principal, token issuer and code notifier.
//  4. Connect to Redis when the outbox driver is selected.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/adminauth/internal/api"
	"github.com/taibuivan/adminauth/internal/auth"
	"github.com/taibuivan/adminauth/internal/platform/config"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/mailer"
	redisstore "github.com/taibuivan/adminauth/internal/platform/redis"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/pkg/clock"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("mail_driver", cfg.MailDriver),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Security Primitives ────────────────────────────────────────────
	hasher := sec.NewBcryptHasher(cfg.PasswordHashCost)

	principal, err := auth.NewPrincipal(auth.PrincipalConfig{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
		Role:     cfg.AdminRole,
	}, hasher)
	must(log, err, "build principal")

	tokens, err := sec.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenLifetime(), clock.System{})
	must(log, err, "initialize token issuer")

	// ── 4. Code Delivery ──────────────────────────────────────────────────
	var (
		notifier    auth.Notifier
		redisClient *redis.Client
	)

	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		notifier, err = mailer.NewSMTPNotifier(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.MailTimeout,
			CodeTTL:  cfg.CodeTTL(),
		})
		must(log, err, "initialize smtp mailer")

	case config.MailDriverRedis:
		redisClient, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		notifier = auth.NewRedisNotifier(redisClient, cfg.RedisOutboxKey, cfg.CodeTTL())

	default:
		log.Warn("mail_driver_log_only", slog.String("hint", "codes are written to the log, not mailed"))
		notifier = auth.NewLogNotifier(nil)
	}

	// ── 5. Health handlers ────────────────────────────────────────────────
	var healthDeps api.HealthDependencies
	if redisClient != nil {
		healthDeps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, redisClient)
		}
	}
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService, err := auth.NewService(principal, hasher, notifier, tokens, auth.Policy{
		CodeTTL:          cfg.CodeTTL(),
		CodeMaxAttempts:  cfg.CodeMaxAttempts,
		LoginMaxAttempts: cfg.LoginMaxAttempts,
		LockDuration:     cfg.LoginLockDuration(),
	})
	must(log, err, "initialize auth service")

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, tokens),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
