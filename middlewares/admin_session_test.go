// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith-api/internal/auth/gate"
	"github.com/promptsmith/promptsmith-api/internal/auth/session"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
)

func newTestGate(t *testing.T) (*gate.Gate, *session.Manager) {
	t.Helper()
	m, err := session.NewManager(session.Config{SigningKey: []byte("test-signing-key")})
	require.NoError(t, err)
	return gate.New(nil, nil, m, m), m
}

func serveAdmin(t *testing.T, mw echo.MiddlewareFunc, cookie *http.Cookie) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	reached := false
	e.GET("/admin/ads", func(c echo.Context) error {
		reached = true
		claims := AdminClaims(c)
		require.NotNil(t, claims)
		return c.String(http.StatusOK, claims.Role)
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/admin/ads", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, reached
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeUnauthorized, body.Error.Code)
	assert.Equal(t, "Unauthorized", body.Error.Message)
}

func TestRequireAdmin_ValidCookie(t *testing.T) {
	g, m := newTestGate(t)
	token, _, err := m.Issue(session.RoleAdmin)
	require.NoError(t, err)

	rec, reached := serveAdmin(t, RequireAdmin(g, "", nil), &http.Cookie{Name: "admin_session", Value: token})

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.RoleAdmin, rec.Body.String())
}

func TestRequireAdmin_CustomCookieName(t *testing.T) {
	g, m := newTestGate(t)
	token, _, err := m.Issue(session.RoleAdmin)
	require.NoError(t, err)

	rec, reached := serveAdmin(t, RequireAdmin(g, "ps_admin", nil), &http.Cookie{Name: "admin_session", Value: token})
	assert.False(t, reached)
	assertUnauthorized(t, rec)

	rec, reached = serveAdmin(t, RequireAdmin(g, "ps_admin", nil), &http.Cookie{Name: "ps_admin", Value: token})
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_Rejections(t *testing.T) {
	g, _ := newTestGate(t)

	other, err := session.NewManager(session.Config{SigningKey: []byte("another-key")})
	require.NoError(t, err)
	forged, _, err := other.Issue(session.RoleAdmin)
	require.NoError(t, err)

	expiredManager, err := session.NewManager(session.Config{
		SigningKey: []byte("test-signing-key"),
		Clock:      func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) },
	})
	require.NoError(t, err)
	expired, _, err := expiredManager.Issue(session.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: "admin_session", Value: ""}},
		{"garbage", &http.Cookie{Name: "admin_session", Value: "not-a-token"}},
		{"wrong key", &http.Cookie{Name: "admin_session", Value: forged}},
		{"expired", &http.Cookie{Name: "admin_session", Value: expired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := serveAdmin(t, RequireAdmin(g, "", nil), tt.cookie)
			assert.False(t, reached)
			assertUnauthorized(t, rec)
		})
	}
}

func TestRequireAdmin_NilAuthorizer(t *testing.T) {
	rec, reached := serveAdmin(t, RequireAdminWithConfig(AdminSessionConfig{}),
		&http.Cookie{Name: "admin_session", Value: "anything"})

	assert.False(t, reached)
	assertUnauthorized(t, rec)
}

func TestAdminClaims_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, AdminClaims(c))
}
