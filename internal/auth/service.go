// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements two-factor authentication for the administrator.
//
// # Architecture
//
// A login is two steps. [Service.Login] checks the password and emails a
// one-time code; [Service.VerifyCode] checks that code and mints a session
// token. Between the two steps the service holds a single pending challenge.
// Failed password attempts are counted and lock the account for a while once
// they reach the configured threshold.
//
// All mutable state lives in memory behind one mutex and is lost on restart.
// Time and randomness are injected so the whole flow is deterministic in tests.
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/ctxutil"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/pkg/clock"
)

// # Collaborators

// PasswordHasher hashes secrets with a salted, slow one-way function.
type PasswordHasher interface {
	Hash(plainText string) (string, error)
	Verify(plainText, digest string) bool
}

// Notifier delivers a verification code to a recipient out of band.
type Notifier interface {
	Send(ctx context.Context, recipient, code string) error
}

// TokenIssuer mints session tokens for an authenticated principal.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
	Lifetime() time.Duration
}

// # Policy

// Policy holds the limits of the login flow.
type Policy struct {
	// CodeTTL is how long an issued code stays usable.
	CodeTTL time.Duration

	// CodeMaxAttempts is how many wrong codes a challenge tolerates.
	CodeMaxAttempts int

	// LoginMaxAttempts is how many wrong passwords trigger a lockout.
	LoginMaxAttempts int

	// LockDuration is how long a lockout lasts.
	LockDuration time.Duration
}

func (policy Policy) validate() error {
	if policy.CodeTTL <= 0 || policy.LockDuration <= 0 {
		return fmt.Errorf("%w: code ttl and lock duration must be positive", apperr.ErrConfiguration)
	}
	if policy.CodeMaxAttempts <= 0 || policy.LoginMaxAttempts <= 0 {
		return fmt.Errorf("%w: attempt limits must be positive", apperr.ErrConfiguration)
	}
	return nil
}

// # Options

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(service *Service) { service.clock = clk }
}

// WithRandom replaces the source used to generate verification codes.
// It must be cryptographically secure outside of tests.
func WithRandom(random io.Reader) Option {
	return func(service *Service) { service.codes = sec.NewCodeGenerator(random) }
}

// # Service

// challenge is a pending verification code. Only its digest is kept.
type challenge struct {
	email      string
	codeDigest string
	expiresAt  time.Time
	attempts   int
}

// Status is a point-in-time view of the login state.
type Status struct {
	FailedAttempts   int
	LockedUntil      time.Time
	PendingChallenge bool
}

// PendingVerification is the result of a successful first step.
type PendingVerification struct {
	Message   string
	ExpiresAt time.Time
}

// Session is the result of a successful second step or a refresh.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      Profile
}

// Service is the login and verification state machine.
//
// It is safe for concurrent use. Code delivery and token signing happen
// outside the lock.
type Service struct {
	principal *Principal
	hasher    PasswordHasher
	notifier  Notifier
	tokens    TokenIssuer
	policy    Policy
	clock     clock.Clock
	codes     *sec.CodeGenerator

	mu             sync.Mutex
	failedAttempts int
	lockedUntil    time.Time
	pending        *challenge
}

// NewService wires the state machine. It fails with [apperr.ErrConfiguration]
// when a collaborator is missing or a policy limit is not positive.
func NewService(principal *Principal, hasher PasswordHasher, notifier Notifier, tokens TokenIssuer, policy Policy, options ...Option) (*Service, error) {
	if principal == nil || hasher == nil || notifier == nil || tokens == nil {
		return nil, fmt.Errorf("%w: auth service dependencies must not be nil", apperr.ErrConfiguration)
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}

	service := &Service{
		principal: principal,
		hasher:    hasher,
		notifier:  notifier,
		tokens:    tokens,
		policy:    policy,
		clock:     clock.System{},
		codes:     sec.NewCodeGenerator(rand.Reader),
	}

	for _, option := range options {
		option(service)
	}

	return service, nil
}

// Login checks the password and, on success, emails a fresh verification code.
//
// # Rules
//   - An email that does not match the principal fails with [ErrInvalidCredentials].
//   - While locked, any attempt fails with [ErrAccountLocked].
//   - A wrong password counts towards the lockout. The attempt that reaches
//     the threshold opens the lock and fails with [ErrAccountLocked].
//   - A correct password clears the counter and replaces any pending challenge.
//   - If the code cannot be delivered the new challenge is withdrawn and the
//     call fails with [ErrDeliveryFailed].
func (service *Service) Login(ctx context.Context, email, password string) (*PendingVerification, error) {
	logger := ctxutil.GetLogger(ctx)
	email = NormalizeEmail(email)

	code, issued, err := service.beginChallenge(email, password)
	if err != nil {
		logger.WarnContext(ctx, "auth_login_rejected", slog.String("email", email), slog.Any("error", err))
		return nil, err
	}

	// ── Delivery (outside the lock) ───────────────────────────────────────

	if err := service.notifier.Send(ctx, email, code); err != nil {
		service.withdraw(issued)
		logger.ErrorContext(ctx, "auth_code_delivery_failed", slog.String("email", email), slog.Any("error", err))
		return nil, ErrDeliveryFailed.WithCause(err)
	}

	logger.InfoContext(ctx, "auth_code_sent", slog.String("email", email), slog.Time("expires_at", issued.expiresAt))

	return &PendingVerification{Message: MessageCodeSent, ExpiresAt: issued.expiresAt}, nil
}

// beginChallenge runs the locked part of Login and returns the plaintext code
// to deliver together with the challenge it belongs to.
func (service *Service) beginChallenge(email, password string) (string, *challenge, error) {
	if email != service.principal.Email() {
		return "", nil, ErrInvalidCredentials
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	now := service.clock.Now()

	// ── 1. Lockout ────────────────────────────────────────────────────────

	if !service.lockedUntil.IsZero() {
		if now.Before(service.lockedUntil) {
			return "", nil, ErrAccountLocked
		}
		// The lock has elapsed: start over with a clean counter.
		service.lockedUntil = time.Time{}
		service.failedAttempts = 0
	}

	// ── 2. Password ───────────────────────────────────────────────────────

	if !service.hasher.Verify(password, service.principal.PasswordDigest()) {
		service.failedAttempts++
		if service.failedAttempts >= service.policy.LoginMaxAttempts {
			service.lockedUntil = now.Add(service.policy.LockDuration)
			return "", nil, ErrAccountLocked
		}
		return "", nil, ErrInvalidCredentials
	}

	service.failedAttempts = 0

	// ── 3. Challenge ──────────────────────────────────────────────────────

	code, err := service.codes.Generate()
	if err != nil {
		return "", nil, apperr.Internal(fmt.Errorf("auth_service_code_generation_failed: %w", err))
	}

	digest, err := service.hasher.Hash(code)
	if err != nil {
		return "", nil, apperr.Internal(fmt.Errorf("auth_service_code_hash_failed: %w", err))
	}

	issued := &challenge{
		email:      email,
		codeDigest: digest,
		expiresAt:  now.Add(service.policy.CodeTTL),
	}
	service.pending = issued

	return code, issued, nil
}

// withdraw drops issued unless a newer login already replaced it.
func (service *Service) withdraw(issued *challenge) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.pending == issued {
		service.pending = nil
	}
}

// VerifyCode redeems the pending challenge and returns a session.
//
// # Rules
//   - No pending challenge, or one for another email: [ErrInvalidCode].
//   - Past its expiry: [ErrCodeExpired].
//   - Attempts exhausted: [ErrTooManyAttempts].
//   - Wrong code: [ErrInvalidCode], and the attempt is counted.
//   - Right code: the challenge is consumed and cannot be used again.
//
// The code is compared case-insensitively.
func (service *Service) VerifyCode(ctx context.Context, email, code string) (*Session, error) {
	logger := ctxutil.GetLogger(ctx)
	email = NormalizeEmail(email)

	if err := service.redeem(email, code); err != nil {
		logger.WarnContext(ctx, "auth_code_rejected", slog.String("email", email), slog.Any("error", err))
		return nil, err
	}

	session, err := service.issueSession()
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "auth_login_completed", slog.String("email", email))
	return session, nil
}

func (service *Service) redeem(email, code string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	pending := service.pending
	if pending == nil || pending.email != email {
		return ErrInvalidCode
	}

	if service.clock.Now().After(pending.expiresAt) {
		return ErrCodeExpired
	}

	if pending.attempts >= service.policy.CodeMaxAttempts {
		return ErrTooManyAttempts
	}

	if !service.hasher.Verify(strings.ToUpper(code), pending.codeDigest) {
		pending.attempts++
		return ErrInvalidCode
	}

	service.pending = nil
	return nil
}

// Refresh issues a new session for an already authenticated subject.
// The caller is responsible for validating the presented token first.
func (service *Service) Refresh(ctx context.Context, email string) (*Session, error) {
	if !service.principal.Matches(email) {
		return nil, ErrPrincipalNotFound
	}

	session, err := service.issueSession()
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_token_refreshed", slog.String("email", service.principal.Email()))
	return session, nil
}

// Profile returns the public view of the principal identified by email.
func (service *Service) Profile(email string) (Profile, error) {
	if !service.principal.Matches(email) {
		return Profile{}, ErrPrincipalNotFound
	}
	return service.principal.Profile(), nil
}

// Status returns a snapshot of the lockout and challenge state.
func (service *Service) Status() Status {
	service.mu.Lock()
	defer service.mu.Unlock()

	return Status{
		FailedAttempts:   service.failedAttempts,
		LockedUntil:      service.lockedUntil,
		PendingChallenge: service.pending != nil,
	}
}

func (service *Service) issueSession() (*Session, error) {
	issuedAt := service.clock.Now()

	token, err := service.tokens.Issue(service.principal.Email(), service.principal.Role())
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_failed: %w", err))
	}

	return &Session{
		Token:     token,
		ExpiresAt: issuedAt.Add(service.tokens.Lifetime()),
		User:      service.principal.Profile(),
	}, nil
}
