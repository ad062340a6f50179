// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package middlewares

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/promptsmith/promptsmith-api/internal/auth/gate"
	"github.com/promptsmith/promptsmith-api/internal/auth/session"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
	"github.com/promptsmith/promptsmith-api/internal/metrics"
)

// AdminContextKey is where the verified admin claims are stored on the echo context.
const AdminContextKey = "admin"

// DefaultSessionCookieName is used when no cookie name is configured.
const DefaultSessionCookieName = "admin_session"

// Authorizer validates an admin session token.
type Authorizer interface {
	Authorize(token string) (*session.Claims, error)
}

// AdminSessionConfig configures RequireAdminWithConfig.
type AdminSessionConfig struct {
	Skipper    middleware.Skipper
	Authorizer Authorizer
	CookieName string
	Metrics    *metrics.AuthMetrics
}

// RequireAdmin rejects requests without a valid admin session cookie.
func RequireAdmin(authorizer Authorizer, cookieName string, m *metrics.AuthMetrics) echo.MiddlewareFunc {
	return RequireAdminWithConfig(AdminSessionConfig{
		Authorizer: authorizer,
		CookieName: cookieName,
		Metrics:    m,
	})
}

// RequireAdminWithConfig returns the admin session middleware. A missing cookie, a bad
// token and a missing authorizer all answer the same 401 before the handler runs.
func RequireAdminWithConfig(cfg AdminSessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookieName
	}

	return echojwt.WithConfig(echojwt.Config{
		Skipper:     cfg.Skipper,
		ContextKey:  AdminContextKey,
		TokenLookup: "cookie:" + cfg.CookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			if cfg.Authorizer == nil {
				return nil, gate.ErrUnauthorized
			}
			claims, err := cfg.Authorizer.Authorize(token)
			cfg.Metrics.RecordTokenValidation(c.Request().Context(), err == nil)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return apierrors.HandleUnauthorizedError(c, "Unauthorized")
		},
	})
}

// AdminClaims returns the claims stored by RequireAdmin, or nil.
func AdminClaims(c echo.Context) *session.Claims {
	claims, _ := c.Get(AdminContextKey).(*session.Claims)
	return claims
}
