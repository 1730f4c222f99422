// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Code generation,
// JWT Signing) from the domain logic. It acts as an Infrastructure service
// injected into the auth layer through small interfaces.
package sec

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/pkg/clock"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// MinSecretLength is the minimum HS256 signing key size in bytes.
const MinSecretLength = 32

// Claims represents the payload embedded inside a session token.
//
// The subject is the principal's email; the role travels alongside it so that
// downstream handlers never need to look the principal up again.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// TokenIssuer mints and verifies HS256 session tokens.
//
// It is immutable after construction and safe for concurrent use.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	clock    clock.Clock
	parser   *jwt.Parser
}

// NewTokenIssuer creates a new TokenIssuer.
//
// It fails with [apperr.ErrConfiguration] when the secret is shorter than
// [MinSecretLength] bytes, the issuer is blank, or the lifetime is not positive.
func NewTokenIssuer(secret, issuer string, lifetime time.Duration, clk clock.Clock) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: jwt secret must be at least %d bytes", apperr.ErrConfiguration, MinSecretLength)
	}
	if strings.TrimSpace(issuer) == "" {
		return nil, fmt.Errorf("%w: jwt issuer must be set", apperr.ErrConfiguration)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: jwt lifetime must be positive", apperr.ErrConfiguration)
	}
	if clk == nil {
		clk = clock.System{}
	}

	issuerService := &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		clock:    clk,
	}

	issuerService.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clk.Now),
		jwt.WithStrictDecoding(),
	)

	return issuerService, nil
}

// Issue creates a signed token for subject carrying role.
func (service *TokenIssuer) Issue(subject, role string) (string, error) {
	currentTime := service.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   subject,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.lifetime)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Validate reports whether the token's signature, issuer and expiry all check out.
// It never returns an error; every failure is simply false.
func (service *TokenIssuer) Validate(tokenString string) bool {
	_, err := service.ExtractClaims(tokenString)
	return err == nil
}

// ExtractClaims parses a token and returns its claims.
//
// Call it on tokens that already passed [TokenIssuer.Validate]; for any other
// input it returns the parse error.
func (service *TokenIssuer) ExtractClaims(tokenString string) (*Claims, error) {
	token, err := service.parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return service.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// Lifetime is how long issued tokens stay valid.
func (service *TokenIssuer) Lifetime() time.Duration {
	return service.lifetime
}
