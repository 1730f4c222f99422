// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

// # Failure Kinds
//
// Every runtime failure of the login flow is one of these values (possibly
// carrying a cause via [apperr.AppError.WithCause]). Match with [errors.Is].

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password,
	// so the response never reveals which one was wrong.
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)

	// ErrAccountLocked is returned while the lockout window is open.
	ErrAccountLocked = apperr.New("ACCOUNT_LOCKED", "Account temporarily locked", http.StatusUnauthorized)

	// ErrInvalidCode is returned for a wrong code or when no challenge is pending.
	ErrInvalidCode = apperr.New("INVALID_CODE", "Invalid verification code", http.StatusUnauthorized)

	// ErrCodeExpired is returned once the pending challenge has passed its expiry.
	ErrCodeExpired = apperr.New("CODE_EXPIRED", "Verification code expired", http.StatusUnauthorized)

	// ErrTooManyAttempts is returned after the pending challenge exhausted its attempts.
	ErrTooManyAttempts = apperr.New("TOO_MANY_ATTEMPTS", "Too many attempts", http.StatusUnauthorized)

	// ErrPrincipalNotFound is returned by refresh for an unknown subject.
	ErrPrincipalNotFound = apperr.New("PRINCIPAL_NOT_FOUND", "User not found", http.StatusUnauthorized)

	// ErrTokenInvalid is returned for a missing, malformed, forged or expired session token.
	ErrTokenInvalid = apperr.New("TOKEN_INVALID", "Invalid token", http.StatusUnauthorized)

	// ErrDeliveryFailed is returned when the notifier could not deliver the code.
	// The challenge created for that code is withdrawn.
	ErrDeliveryFailed = apperr.New("DELIVERY_FAILED", "Verification code could not be delivered", http.StatusServiceUnavailable)
)
