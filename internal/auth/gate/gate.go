// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package gate orchestrates admin authentication: password check, then one-time code
// check, then session issuance. It also authorizes requests carrying a session token.
package gate

import (
	"context"
	"errors"
	"time"

	"github.com/promptsmith/promptsmith-api/internal/auth/session"
)

var (
	ErrNotConfigured      = errors.New("server admin not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalid2FA         = errors.New("invalid 2FA")
	ErrUnauthorized       = errors.New("unauthorized")
)

// CodeLength is the number of digits an admin one-time code must have.
const CodeLength = 6

// PasswordVerifier checks the admin password.
type PasswordVerifier interface {
	VerifyPassword(password string) error
}

// CodeVerifier checks a one-time code against the shared secret.
type CodeVerifier interface {
	Validate(code string) bool
}

// TokenIssuer signs a session token for a role.
type TokenIssuer interface {
	Issue(role string) (string, *session.Claims, error)
}

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claims    *session.Claims
}

// Gate wires the collaborators together. A nil password or code verifier means the
// admin account is not configured.
type Gate struct {
	passwords PasswordVerifier
	codes     CodeVerifier
	issuer    TokenIssuer
	verifier  TokenVerifier
}

// New returns a Gate.
func New(passwords PasswordVerifier, codes CodeVerifier, issuer TokenIssuer, verifier TokenVerifier) *Gate {
	return &Gate{
		passwords: passwords,
		codes:     codes,
		issuer:    issuer,
		verifier:  verifier,
	}
}

// Configured reports whether logins can succeed at all.
func (g *Gate) Configured() bool {
	return g.passwords != nil && g.codes != nil && g.issuer != nil
}

// Login authenticates the admin. The code is only looked at once the password matched,
// and a token is issued only when both factors pass.
func (g *Gate) Login(ctx context.Context, password, code string) (*Session, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := g.passwords.VerifyPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !isCode(code) || !g.codes.Validate(code) {
		return nil, ErrInvalid2FA
	}

	token, claims, err := g.issuer.Issue(session.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s := &Session{Token: token, Claims: claims}
	if claims != nil && claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Authorize returns the claims of an admin token. Every failure maps to ErrUnauthorized.
func (g *Gate) Authorize(token string) (*session.Claims, error) {
	if token == "" || g.verifier == nil {
		return nil, ErrUnauthorized
	}
	claims, err := g.verifier.Verify(token)
	if err != nil || claims == nil || claims.Role != session.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func isCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
