// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package controllers provides the controllers for the API
package controllers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/promptsmith/promptsmith-api/internal/auth/gate"
	"github.com/promptsmith/promptsmith-api/internal/auth/oath"
	"github.com/promptsmith/promptsmith-api/internal/auth/session"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/internal/metrics"
	"github.com/promptsmith/promptsmith-api/internal/tracing"
)

// Authenticator is the part of the auth gate the controller needs.
type Authenticator interface {
	Login(ctx context.Context, password, code string) (*gate.Session, error)
	Authorize(token string) (*session.Claims, error)
}

// SessionCookie describes the admin session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Enrollment holds what the enroll endpoint needs to provision a new secret. An empty
// SetupCode disables the endpoint.
type Enrollment struct {
	SetupCode string
	Issuer    string
	Account   string
}

// AuthenticationController is the controller for the authentication routes
type AuthenticationController struct {
	gate       Authenticator
	metrics    *metrics.AuthMetrics
	cookie     SessionCookie
	enrollment Enrollment
	clock      func() time.Time
}

// NewAuthenticationController returns a new AuthenticationController
func NewAuthenticationController(
	g Authenticator,
	m *metrics.AuthMetrics,
	cookie SessionCookie,
	enrollment Enrollment,
	t func() time.Time,
) *AuthenticationController {
	if cookie.Name == "" {
		cookie.Name = "admin_session"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = session.DefaultTTL
	}
	return &AuthenticationController{
		gate:       g,
		metrics:    m,
		cookie:     cookie,
		enrollment: enrollment,
		clock:      t,
	}
}

// now returns the current time, or the time set by the clock func
func (ctr *AuthenticationController) now() time.Time {
	if ctr.clock == nil {
		return time.Now()
	}
	return ctr.clock()
}

// loginRequest is the struct holding the data for the login request
type loginRequest struct {
	Password string `json:"password" validate:"max=1024"`
	Code     string `json:"code"     validate:"max=64"`
}

// LoginResponse is sent after a successful login; the token itself travels in the cookie.
type LoginResponse struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SessionResponse reports whether the caller holds a valid admin session.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login godoc
// @Summary Admin login
// @Description Checks the admin password, then the 6 digit TOTP code, and sets the admin session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param data body loginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} apierrors.ErrorResponse "Bad request"
// @Failure 401 {object} apierrors.ErrorResponse "Invalid credentials or invalid 2FA"
// @Failure 429 {object} apierrors.ErrorResponse "Too many requests"
// @Failure 500 {object} apierrors.ErrorResponse "Server admin not configured"
// @Router /authn/login [post]
func (ctr *AuthenticationController) Login(c echo.Context) error {
	logger := helper.GetRequestLogger(c)
	ctx := c.Request().Context()
	start := ctr.now()

	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return apierrors.HandleBadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apierrors.HandleValidationError(c, err)
	}

	var sess *gate.Session
	err := tracing.TraceAuthentication(ctx, "login", func(ctx context.Context) error {
		var err error
		sess, err = ctr.gate.Login(ctx, req.Password, req.Code)
		return err
	})
	if err != nil {
		stage := loginFailureStage(err)
		ctr.metrics.RecordLoginAttempt(ctx, false, stage, ctr.now().Sub(start))
		logger.Warn("Admin login rejected", slog.String("stage", stage))

		switch stage {
		case metrics.StageConfig:
			return apierrors.HandleInternalError(c, err, "Server admin not configured")
		case metrics.StagePassword:
			return apierrors.HandleUnauthorizedError(c, "Invalid credentials")
		case metrics.Stage2FA:
			return apierrors.HandleUnauthorizedError(c, "Invalid 2FA")
		default:
			return apierrors.HandleInternalError(c, err, "")
		}
	}

	ctr.metrics.RecordLoginAttempt(ctx, true, "", ctr.now().Sub(start))
	ctr.metrics.RecordTokenIssued(ctx, session.RoleAdmin)
	logger.Info("Admin logged in")

	expires := sess.ExpiresAt
	if expires.IsZero() {
		expires = ctr.now().Add(ctr.cookie.TTL)
	}
	ctr.writeSessionCookie(c, sess.Token, expires)

	return c.JSON(http.StatusOK, &LoginResponse{
		Authenticated: true,
		ExpiresAt:     expires.UTC(),
	})
}

// Session godoc
// @Summary Session status
// @Description Reports whether the admin session cookie holds a valid token. Never fails.
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /authn/session [get]
func (ctr *AuthenticationController) Session(c echo.Context) error {
	token, err := readCookie(c, ctr.cookie.Name)
	if err != nil || token == "" {
		return c.JSON(http.StatusOK, &SessionResponse{Authenticated: false})
	}

	_, err = ctr.gate.Authorize(token)
	ctr.metrics.RecordTokenValidation(c.Request().Context(), err == nil)

	return c.JSON(http.StatusOK, &SessionResponse{Authenticated: err == nil})
}

// Logout godoc
// @Summary Logout
// @Description Clears the admin session cookie. Tokens are not revoked server side.
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /authn/logout [post]
func (ctr *AuthenticationController) Logout(c echo.Context) error {
	deleteCookie(c, ctr.cookie.Name, ctr.cookie.Secure)
	ctr.metrics.RecordLogout(c.Request().Context())
	return c.JSON(http.StatusOK, &SessionResponse{Authenticated: false})
}

// enrollRequest carries the owner setup code
type enrollRequest struct {
	SetupCode string `json:"setup_code" validate:"required,max=256"`
}

// EnrollResponse holds a freshly generated secret and how to provision it.
type EnrollResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

// Enroll godoc
// @Summary Generate an admin TOTP secret
// @Description Returns a new base32 secret, its otpauth URI and a base64 PNG QR code. The secret is
// @Description not stored; the operator copies it into ADMIN_TOTP_SECRET.
// @Tags auth
// @Accept json
// @Produce json
// @Param data body enrollRequest true "Enroll request"
// @Success 200 {object} EnrollResponse
// @Failure 401 {object} apierrors.ErrorResponse "Invalid setup code"
// @Failure 404 {object} apierrors.ErrorResponse "Enrollment disabled"
// @Router /authn/enroll [post]
func (ctr *AuthenticationController) Enroll(c echo.Context) error {
	ctx := c.Request().Context()

	if ctr.enrollment.SetupCode == "" {
		return apierrors.HandleNotFoundError(c, "Enrollment")
	}

	req := new(enrollRequest)
	if err := c.Bind(req); err != nil {
		return apierrors.HandleBadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apierrors.HandleValidationError(c, err)
	}

	if subtle.ConstantTimeCompare([]byte(req.SetupCode), []byte(ctr.enrollment.SetupCode)) != 1 {
		ctr.metrics.RecordEnrollment(ctx, false)
		tracing.NewTracedContext(ctx).MarkFailure("invalid setup code")
		return apierrors.HandleUnauthorizedError(c, "Invalid setup code")
	}

	secret, err := oath.GenerateSecret()
	if err != nil {
		ctr.metrics.RecordEnrollment(ctx, false)
		return apierrors.HandleInternalError(c, err, "Failed to generate secret")
	}

	uri := oath.ProvisioningURI(secret, ctr.enrollment.Account, ctr.enrollment.Issuer)
	qr, err := helper.GenerateTOTPQRCode(uri)
	if err != nil {
		ctr.metrics.RecordEnrollment(ctx, false)
		return apierrors.HandleInternalError(c, err, "Failed to generate QR code")
	}

	ctr.metrics.RecordEnrollment(ctx, true)
	helper.GetRequestLogger(c).Info("Generated admin TOTP secret")

	return c.JSON(http.StatusOK, &EnrollResponse{
		Secret: secret,
		URI:    uri,
		QRCode: qr,
	})
}

func loginFailureStage(err error) string {
	switch {
	case errors.Is(err, gate.ErrNotConfigured):
		return metrics.StageConfig
	case errors.Is(err, gate.ErrInvalidCredentials):
		return metrics.StagePassword
	case errors.Is(err, gate.ErrInvalid2FA):
		return metrics.Stage2FA
	default:
		return metrics.StageToken
	}
}

// writeSessionCookie sets the admin session cookie
func (ctr *AuthenticationController) writeSessionCookie(c echo.Context, token string, expires time.Time) {
	cookie := new(http.Cookie)
	cookie.Name = ctr.cookie.Name
	cookie.Value = token
	cookie.Path = "/"
	cookie.Expires = expires
	cookie.MaxAge = int(expires.Sub(ctr.now()).Seconds())
	cookie.HttpOnly = true
	cookie.Secure = ctr.cookie.Secure
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)
}

// readCookie reads a cookie from the client
func readCookie(c echo.Context, name string) (string, error) {
	cookie, err := c.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// deleteCookie deletes a cookie from the client
func deleteCookie(c echo.Context, name string, secure bool) {
	cookie := new(http.Cookie)
	cookie.Name = name
	cookie.MaxAge = -1
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = secure
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)
}
