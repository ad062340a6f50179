// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package helper

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// GetRequestID extracts the request ID from the Echo context.
// Returns "unknown" if no request ID is found.
func GetRequestID(c echo.Context) string {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = "unknown"
	}
	return requestID
}

// GetRequestLogger returns a slog.Logger that includes the request ID and, when the
// request is traced, the trace and span IDs.
func GetRequestLogger(c echo.Context) *slog.Logger {
	logger := slog.With("requestID", GetRequestID(c))

	sc := trace.SpanFromContext(c.Request().Context()).SpanContext()
	if sc.IsValid() {
		logger = logger.With(
			"traceID", sc.TraceID().String(),
			"spanID", sc.SpanID().String(),
		)
	}
	return logger
}

// ParseLogLevel maps a configured level name to a slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
