// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestContext creates a test echo context with proper headers
func setupTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Response().Header().Set(echo.HeaderXRequestID, "test-request-id")

	return c, rec
}

// captureLogOutput captures slog output for testing
func captureLogOutput(_ *testing.T, fn func()) string {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	previous := slog.Default()
	slog.SetDefault(slog.New(handler))
	defer slog.SetDefault(previous)

	fn()

	return buf.String()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	return response
}

func TestHandleValidationError(t *testing.T) {
	t.Run("validator.ValidationErrors", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/api/v1/ads")

		validate := validator.New()
		type TestStruct struct {
			Title     string `validate:"required,max=5"`
			MediaType string `validate:"required,oneof=image video"`
		}

		err := validate.Struct(TestStruct{Title: "too long a title", MediaType: "gif"})
		require.Error(t, err)

		logOutput := captureLogOutput(t, func() {
			_ = HandleValidationError(c, err)
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, ErrCodeValidation, response.Error.Code)
		assert.Equal(t, "Invalid input provided", response.Error.Message)

		details, ok := response.Error.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Must be no more than 5 characters long", details["Title"])
		assert.Equal(t, "Must be one of: image, video", details["MediaType"])

		assert.Contains(t, logOutput, "Validation error")
		assert.Contains(t, logOutput, "test-request-id")
		assert.Contains(t, logOutput, "/api/v1/ads")
	})

	t.Run("wrapped validation errors", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/api/v1/ads")

		type TestStruct struct {
			Title string `validate:"required"`
		}
		err := validator.New().Struct(TestStruct{})
		require.Error(t, err)

		_ = HandleValidationError(c, fmt.Errorf("binding: %w", err))

		response := decode(t, rec)
		assert.Equal(t, "Invalid input provided", response.Error.Message)
	})

	t.Run("generic error", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/test")
		err := errors.New("generic validation error")

		logOutput := captureLogOutput(t, func() {
			_ = HandleValidationError(c, err)
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, ErrCodeValidation, response.Error.Code)
		assert.Equal(t, "generic validation error", response.Error.Message)
		assert.Nil(t, response.Error.Details)

		assert.Contains(t, logOutput, "Generic validation error")
	})
}

func TestHandleDatabaseError(t *testing.T) {
	t.Run("generic failure", func(t *testing.T) {
		c, rec := setupTestContext("GET", "/api/v1/ads")
		err := errors.New("connection refused")

		logOutput := captureLogOutput(t, func() {
			_ = HandleDatabaseError(c, err)
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, ErrCodeDatabase, response.Error.Code)
		assert.Equal(t, "An error occurred while processing your request", response.Error.Message)

		assert.Contains(t, logOutput, "Database error")
		assert.Contains(t, logOutput, "connection refused")
		assert.NotContains(t, response.Error.Message, "connection refused")
	})

	t.Run("unique violation", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/api/v1/ads")
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "advertisements_pkey"})

		logOutput := captureLogOutput(t, func() {
			_ = HandleDatabaseError(c, err)
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, ErrCodeConflict, response.Error.Code)
		assert.Equal(t, "Advertisement already exists", response.Error.Message)
		assert.Contains(t, logOutput, "advertisements_pkey")
	})

	t.Run("other constraint", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/api/v1/ads")
		_ = HandleDatabaseError(c, &pgconn.PgError{Code: "23505", ConstraintName: "other_key"})

		response := decode(t, rec)
		assert.Equal(t, "A record with this information already exists", response.Error.Message)
	})
}

func TestHandleUnauthorizedError(t *testing.T) {
	t.Run("with custom message", func(t *testing.T) {
		c, rec := setupTestContext("POST", "/api/v1/authn/login")

		logOutput := captureLogOutput(t, func() {
			_ = HandleUnauthorizedError(c, "Invalid 2FA")
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, ErrCodeUnauthorized, response.Error.Code)
		assert.Equal(t, "Invalid 2FA", response.Error.Message)

		assert.Contains(t, logOutput, "Unauthorized access attempt")
		assert.Contains(t, logOutput, "Invalid 2FA")
	})

	t.Run("with default message", func(t *testing.T) {
		c, rec := setupTestContext("DELETE", "/api/v1/ads/1")

		_ = HandleUnauthorizedError(c, "")

		response := decode(t, rec)
		assert.Equal(t, "Unauthorized", response.Error.Message)
	})
}

func TestHandleNotFoundError(t *testing.T) {
	t.Run("with resource name", func(t *testing.T) {
		c, rec := setupTestContext("PUT", "/api/v1/ads/missing")

		logOutput := captureLogOutput(t, func() {
			_ = HandleNotFoundError(c, "Advertisement")
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		response := decode(t, rec)
		assert.Equal(t, "Advertisement not found", response.Error.Message)
		assert.Contains(t, logOutput, "Resource not found")
	})

	t.Run("without resource name", func(t *testing.T) {
		c, rec := setupTestContext("GET", "/invalid")

		_ = HandleNotFoundError(c, "")

		response := decode(t, rec)
		assert.Equal(t, "Resource not found", response.Error.Message)
	})
}

func TestHandleBadRequestError(t *testing.T) {
	c, rec := setupTestContext("POST", "/test")

	logOutput := captureLogOutput(t, func() {
		_ = HandleBadRequestError(c, "Invalid JSON")
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	response := decode(t, rec)
	assert.Equal(t, ErrCodeBadRequest, response.Error.Code)
	assert.Equal(t, "Invalid JSON", response.Error.Message)

	assert.Contains(t, logOutput, "Bad request")
}

func TestHandleTooManyRequestsError(t *testing.T) {
	tests := []struct {
		retryAfter time.Duration
		header     string
	}{
		{42 * time.Second, "42"},
		{1500 * time.Millisecond, "2"},
		{0, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.retryAfter.String(), func(t *testing.T) {
			c, rec := setupTestContext("POST", "/api/v1/authn/login")

			logOutput := captureLogOutput(t, func() {
				_ = HandleTooManyRequestsError(c, tt.retryAfter)
			})

			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, tt.header, rec.Header().Get("Retry-After"))
			response := decode(t, rec)
			assert.Equal(t, ErrCodeTooManyRequests, response.Error.Code)
			assert.Contains(t, logOutput, "Rate limit exceeded")
		})
	}
}

func TestHandleInternalError(t *testing.T) {
	c, rec := setupTestContext("GET", "/test")
	internalErr := errors.New("panic: something went wrong")

	logOutput := captureLogOutput(t, func() {
		_ = HandleInternalError(c, internalErr, "Server admin not configured")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	response := decode(t, rec)
	assert.Equal(t, ErrCodeInternal, response.Error.Code)
	assert.Equal(t, "Server admin not configured", response.Error.Message)

	assert.Contains(t, logOutput, "Internal server error")
	assert.Contains(t, logOutput, "panic: something went wrong")
	assert.NotContains(t, response.Error.Message, "panic")

	c, rec = setupTestContext("GET", "/test")
	_ = HandleInternalError(c, nil, "")
	assert.Equal(t, "Internal server error", decode(t, rec).Error.Message)
}

func TestGetValidationErrorMessage(t *testing.T) {
	validate := validator.New()

	type TestStruct struct {
		Required string `validate:"required"`
		MinLen   string `validate:"min=5"`
		MaxLen   string `validate:"max=10"`
		Numeric  string `validate:"numeric"`
		URL      string `validate:"url"`
	}

	valid := TestStruct{Required: "value", MinLen: "12345", MaxLen: "short", Numeric: "123", URL: "https://example.com"}

	testCases := []struct {
		name     string
		mutate   func(*TestStruct)
		field    string
		contains string
	}{
		{"required field missing", func(s *TestStruct) { s.Required = "" }, "Required", "required"},
		{"min length violation", func(s *TestStruct) { s.MinLen = "123" }, "MinLen", "5"},
		{"max length violation", func(s *TestStruct) { s.MaxLen = "this is too long" }, "MaxLen", "10"},
		{"non-numeric value", func(s *TestStruct) { s.Numeric = "abc" }, "Numeric", "numbers"},
		{"invalid URL", func(s *TestStruct) { s.URL = "not-a-url" }, "URL", "URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			err := validate.Struct(input)
			require.Error(t, err)

			var validationErrors validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrors))

			var targetError validator.FieldError
			for _, fieldError := range validationErrors {
				if fieldError.Field() == tc.field {
					targetError = fieldError
					break
				}
			}
			require.NotNil(t, targetError, "Should find validation error for field %s", tc.field)

			message := getValidationErrorMessage(targetError)
			assert.Contains(t, strings.ToLower(message), strings.ToLower(tc.contains))
		})
	}
}

func TestGetRequestID(t *testing.T) {
	t.Run("with request ID header", func(t *testing.T) {
		c, _ := setupTestContext("GET", "/test")
		c.Response().Header().Set(echo.HeaderXRequestID, "custom-request-id")

		assert.Equal(t, "custom-request-id", getRequestID(c))
	})

	t.Run("without request ID header", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest("GET", "/test", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		assert.Equal(t, "unknown", getRequestID(c))
	})
}
