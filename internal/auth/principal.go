// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/sec"
)

// # Principal Store

// PrincipalConfig is the startup configuration of the administrator.
type PrincipalConfig struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Principal is the single administrative identity this service authenticates.
//
// It is built once at startup and never mutated, so it is safe to share
// between goroutines without locking. The plaintext password is hashed in
// [NewPrincipal] and not retained.
type Principal struct {
	email          string
	name           string
	role           string
	passwordDigest string
}

// Profile is the public view of the principal returned to clients.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// NewPrincipal normalizes the configured identity and hashes its password.
//
// It fails with [apperr.ErrConfiguration] if email or password is blank, or if
// the password is longer than [sec.MaxSecretBytes] bytes.
func NewPrincipal(config PrincipalConfig, hasher PasswordHasher) (*Principal, error) {
	email := NormalizeEmail(config.Email)
	if email == "" || strings.TrimSpace(config.Password) == "" {
		return nil, fmt.Errorf("%w: ADMIN_EMAIL and ADMIN_PASSWORD must be set", apperr.ErrConfiguration)
	}
	if len(config.Password) > sec.MaxSecretBytes {
		return nil, fmt.Errorf("%w: ADMIN_PASSWORD must be at most %d bytes", apperr.ErrConfiguration, sec.MaxSecretBytes)
	}

	digest, err := hasher.Hash(config.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: ADMIN_PASSWORD could not be hashed: %v", apperr.ErrConfiguration, err)
	}

	principal := &Principal{
		email:          email,
		name:           config.Name,
		role:           config.Role,
		passwordDigest: digest,
	}

	if strings.TrimSpace(principal.name) == "" {
		principal.name = DefaultDisplayName
	}
	if strings.TrimSpace(principal.role) == "" {
		principal.role = DefaultRole
	}

	return principal, nil
}

// Email returns the normalized email address.
func (principal *Principal) Email() string { return principal.email }

// Name returns the display name.
func (principal *Principal) Name() string { return principal.name }

// Role returns the role label carried in session tokens.
func (principal *Principal) Role() string { return principal.role }

// PasswordDigest returns the hashed password.
func (principal *Principal) PasswordDigest() string { return principal.passwordDigest }

// Matches reports whether email (in any casing or padding) identifies this principal.
func (principal *Principal) Matches(email string) bool {
	return NormalizeEmail(email) == principal.email
}

// Profile returns the public view of the principal.
func (principal *Principal) Profile() Profile {
	return Profile{Email: principal.email, Name: principal.name, Role: principal.role}
}

// NormalizeEmail trims and lower-cases an address. Unicode input is first
// composed (NFC) so visually identical addresses compare equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(email)))
}
