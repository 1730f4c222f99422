// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/adminauth/internal/auth"
	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/sec"
)

func TestNewService_Rejects(t *testing.T) {
	hasher := sec.NewBcryptHasher(bcrypt.MinCost)
	principal, err := auth.NewPrincipal(auth.PrincipalConfig{Email: adminEmail, Password: adminPassword}, hasher)
	require.NoError(t, err)
	tokens, err := sec.NewTokenIssuer(testSecret, "life2food", time.Hour, nil)
	require.NoError(t, err)

	broken := testPolicy
	broken.CodeMaxAttempts = 0

	_, err = auth.NewService(principal, hasher, nil, tokens, testPolicy)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	_, err = auth.NewService(principal, hasher, &recordingNotifier{}, tokens, broken)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

/*
TestLoginAndVerify_EndToEnd walks the happy path with a deterministic code.
*/
func TestLoginAndVerify_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.service.Login(ctx, "Admin@Example.com ", adminPassword)
	require.NoError(t, err)
	assert.Equal(t, auth.MessageCodeSent, pending.Message)
	assert.Equal(t, startTime.Add(10*time.Minute), pending.ExpiresAt)
	assert.Equal(t, knownCode, f.notifier.last())
	assert.True(t, f.service.Status().PendingChallenge)

	// Lower-case input is accepted.
	session, err := f.service.VerifyCode(ctx, adminEmail, "k3f9qz")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, auth.Profile{Email: adminEmail, Name: "Admin", Role: "SUPER_ADMIN"}, session.User)
	assert.Equal(t, startTime.Add(2*time.Hour), session.ExpiresAt)

	assert.True(t, f.tokens.Validate(session.Token))
	claims, err := f.tokens.ExtractClaims(session.Token)
	require.NoError(t, err)
	assert.Equal(t, adminEmail, claims.Subject)
	assert.Equal(t, "SUPER_ADMIN", claims.Role)

	// The code is single-use.
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.False(t, f.service.Status().PendingChallenge)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "someone@example.com", adminPassword)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 0, f.service.Status().FailedAttempts, "unknown emails do not count")

	_, err = f.service.Login(ctx, adminEmail, "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 1, f.service.Status().FailedAttempts)
	assert.Zero(t, f.notifier.calls)
}

/*
TestLogin_Lockout verifies the threshold, the lock window and its expiry.
*/
func TestLogin_Lockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for attempt := 1; attempt < testPolicy.LoginMaxAttempts; attempt++ {
		_, err := f.service.Login(ctx, adminEmail, "wrong")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials, "attempt %d", attempt)
	}

	// The attempt that reaches the threshold reports the lock.
	_, err := f.service.Login(ctx, adminEmail, "wrong")
	require.ErrorIs(t, err, auth.ErrAccountLocked)
	assert.Equal(t, startTime.Add(15*time.Minute), f.service.Status().LockedUntil)

	// Even the right password is refused while locked.
	f.clock.Advance(14 * time.Minute)
	_, err = f.service.Login(ctx, adminEmail, adminPassword)
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
	assert.Zero(t, f.notifier.calls)

	// Once the window has passed the account behaves as new.
	f.clock.Advance(time.Minute)
	_, err = f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	status := f.service.Status()
	assert.Zero(t, status.FailedAttempts)
	assert.True(t, status.LockedUntil.IsZero())
	assert.True(t, status.PendingChallenge)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		_, _ = f.service.Login(ctx, adminEmail, "wrong")
	}
	require.Equal(t, 3, f.service.Status().FailedAttempts)

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	assert.Zero(t, f.service.Status().FailedAttempts)

	// A fresh run of failures is needed to lock again.
	for range 4 {
		_, err = f.service.Login(ctx, adminEmail, "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
}

func TestLogin_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp: connection refused")

	_, err := f.service.Login(context.Background(), adminEmail, adminPassword)
	require.ErrorIs(t, err, auth.ErrDeliveryFailed)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 503, appError.HTTPStatus)
	assert.False(t, f.service.Status().PendingChallenge, "undelivered codes are withdrawn")

	_, err = f.service.VerifyCode(context.Background(), adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

/*
TestLogin_DeliveryFailureKeepsNewerChallenge verifies the lock is released
while a code is being delivered, and that a failed delivery only withdraws
its own challenge, not one issued by a login that ran in the meantime.
*/
func TestLogin_DeliveryFailureKeepsNewerChallenge(t *testing.T) {
	gate := newGatedNotifier()
	f := newFixtureWith(t, gate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	firstLogin := make(chan error, 1)
	go func() {
		_, err := f.service.Login(ctx, adminEmail, adminPassword)
		firstLogin <- err
	}()

	select {
	case <-gate.entered:
	case <-ctx.Done():
		t.Fatal("first delivery never started")
	}

	// Both calls would block forever if the lock were held during delivery.
	assert.True(t, f.service.Status().PendingChallenge)
	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	gate.release <- errors.New("smtp: i/o timeout")
	require.ErrorIs(t, <-firstLogin, auth.ErrDeliveryFailed)

	assert.True(t, f.service.Status().PendingChallenge, "the newer challenge survives")
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.NoError(t, err)
}

func TestLogin_ReplacesPendingChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	_, err = f.service.VerifyCode(ctx, adminEmail, "AAAAAA")
	require.ErrorIs(t, err, auth.ErrInvalidCode)

	// A second login starts a new challenge with a fresh attempt budget and expiry.
	f.clock.Advance(9 * time.Minute)
	_, err = f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.NoError(t, err)
}

func TestVerifyCode_Expiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	f.clock.Advance(10*time.Minute + time.Second)
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrCodeExpired)

	// Expired challenges keep reporting expiry, even for the right code.
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrCodeExpired)
}

func TestVerifyCode_ValidAtExactExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.NoError(t, err)
}

/*
TestVerifyCode_TooManyAttempts verifies the challenge stops accepting codes,
including the correct one, once its attempts are spent.
*/
func TestVerifyCode_TooManyAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	for attempt := 1; attempt <= testPolicy.CodeMaxAttempts; attempt++ {
		_, err = f.service.VerifyCode(ctx, adminEmail, "ZZZZZZ")
		require.ErrorIs(t, err, auth.ErrInvalidCode, "attempt %d", attempt)
	}

	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	_, err = f.service.VerifyCode(ctx, adminEmail, "ZZZZZZ")
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
}

func TestVerifyCode_NoChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	_, err = f.service.VerifyCode(ctx, "intruder@example.com", knownCode)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	// The mismatched email did not consume the challenge.
	_, err = f.service.VerifyCode(ctx, adminEmail, knownCode)
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Advance(30 * time.Minute)
	session, err := f.service.Refresh(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.True(t, f.tokens.Validate(session.Token))
	assert.Equal(t, startTime.Add(30*time.Minute+2*time.Hour), session.ExpiresAt)

	_, err = f.service.Refresh(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)

	profile, err := f.service.Profile(adminEmail)
	require.NoError(t, err)
	assert.Equal(t, "Admin", profile.Name)

	_, err = f.service.Profile("ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
}

/*
TestService_ConcurrentVerify verifies a code can be redeemed only once even
when many callers race for it.
*/
func TestService_ConcurrentVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.VerifyCode(ctx, adminEmail, knownCode); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

/*
TestService_ConcurrentFailures verifies racing wrong passwords are all counted.
*/
func TestService_ConcurrentFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range testPolicy.LoginMaxAttempts - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.service.Login(ctx, adminEmail, "wrong")
		}()
	}
	wg.Wait()

	assert.Equal(t, testPolicy.LoginMaxAttempts-1, f.service.Status().FailedAttempts)

	_, err := f.service.Login(ctx, adminEmail, "wrong")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
}
