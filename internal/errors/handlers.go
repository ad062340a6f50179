// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation.
const pgUniqueViolation = "23505"

// getRequestID extracts request ID from context for logging
func getRequestID(c echo.Context) string {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = "unknown"
	}
	return requestID
}

// requestAttrs are logged with every handled error.
func requestAttrs(c echo.Context, attrs ...any) []any {
	return append([]any{
		"requestID", getRequestID(c),
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
	}, attrs...)
}

// HandleValidationError handles validation errors with detailed field-level information
func HandleValidationError(c echo.Context, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			details[e.Field()] = getValidationErrorMessage(e)
		}

		slog.Warn("Validation error", requestAttrs(c, "errors", details)...)

		return c.JSON(http.StatusBadRequest, NewErrorResponse(
			ErrCodeValidation,
			"Invalid input provided",
			details,
		))
	}

	slog.Warn("Generic validation error", requestAttrs(c, "error", err.Error())...)

	return c.JSON(http.StatusBadRequest, NewErrorResponse(
		ErrCodeValidation,
		err.Error(),
		nil,
	))
}

// HandleDatabaseError logs the failure and answers with a generic message. Unique
// constraint violations are reported as a conflict.
func HandleDatabaseError(c echo.Context, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		message := "A record with this information already exists"
		if strings.HasPrefix(pgErr.ConstraintName, "advertisements") {
			message = "Advertisement already exists"
		}

		slog.Warn("Unique constraint violation", requestAttrs(c,
			"constraint", pgErr.ConstraintName,
			"detail", pgErr.Detail)...)

		return c.JSON(http.StatusConflict, NewErrorResponse(ErrCodeConflict, message, nil))
	}

	slog.Error("Database error", requestAttrs(c, "error", err.Error())...)

	return c.JSON(http.StatusInternalServerError, NewErrorResponse(
		ErrCodeDatabase,
		"An error occurred while processing your request",
		nil,
	))
}

// HandleUnauthorizedError handles authentication failures
func HandleUnauthorizedError(c echo.Context, message string) error {
	if message == "" {
		message = "Unauthorized"
	}

	slog.Warn("Unauthorized access attempt", requestAttrs(c, "message", message)...)

	return c.JSON(http.StatusUnauthorized, NewErrorResponse(ErrCodeUnauthorized, message, nil))
}

// HandleNotFoundError handles resource not found errors
func HandleNotFoundError(c echo.Context, resource string) error {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}

	slog.Info("Resource not found", requestAttrs(c, "resource", resource)...)

	return c.JSON(http.StatusNotFound, NewErrorResponse(ErrCodeNotFound, message, nil))
}

// HandleBadRequestError handles malformed request errors
func HandleBadRequestError(c echo.Context, message string) error {
	if message == "" {
		message = "Bad request"
	}

	slog.Warn("Bad request", requestAttrs(c, "message", message)...)

	return c.JSON(http.StatusBadRequest, NewErrorResponse(ErrCodeBadRequest, message, nil))
}

// HandleTooManyRequestsError rejects a rate limited request and tells the client when to retry.
func HandleTooManyRequestsError(c echo.Context, retryAfter time.Duration) error {
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))

	slog.Warn("Rate limit exceeded", requestAttrs(c,
		"ip", c.RealIP(),
		"retryAfter", seconds)...)

	return c.JSON(http.StatusTooManyRequests, NewErrorResponse(
		ErrCodeTooManyRequests,
		"Too many requests, please try again later",
		map[string]int{"retry_after": seconds},
	))
}

// HandleInternalError handles unexpected internal server errors
func HandleInternalError(c echo.Context, err error, message string) error {
	if message == "" {
		message = "Internal server error"
	}

	errText := "<nil>"
	if err != nil {
		errText = err.Error()
	}
	slog.Error("Internal server error", requestAttrs(c,
		"error", errText,
		"publicMessage", message)...)

	return c.JSON(http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, message, nil))
}

// getValidationErrorMessage converts validator field errors to human-readable messages
func getValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Must be no more than %s characters long", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters long", fe.Param())
	case "numeric":
		return "Must contain only numbers"
	case "url", "http_url":
		return "Must be a valid URL"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "mediatype":
		return "Must be one of: image, video"
	case "mediaurl":
		return "Must be an http(s) URL or a base64 data URL"
	case "nocontrolchars":
		return "Must not contain control characters"
	case "notrimmed":
		return "Must not start or end with whitespace"
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}
