// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package middlewares provides middleware functions for the Echo framework
package middlewares

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/promptsmith/promptsmith-api/internal/config"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/internal/metrics"
	"github.com/promptsmith/promptsmith-api/internal/ratelimit"
)

// DefaultRateLimitPatterns are the credential endpoints guarded by default.
var DefaultRateLimitPatterns = []string{
	"POST:/authn/login",
	"POST:/authn/enroll",
}

// RateLimitConfig defines the configuration for rate limiting middleware
type RateLimitConfig struct {
	// Skipper defines a function to skip middleware
	Skipper middleware.Skipper

	// RateLimiter is the rate limiter implementation
	RateLimiter ratelimit.RateLimiter

	// RequestsPerMinute is the number of requests allowed per window
	RequestsPerMinute int

	// WindowMinutes is the time window in minutes
	WindowMinutes int

	// KeyGenerator generates the rate limit key for a request
	KeyGenerator func(c echo.Context) string

	// ErrorHandler handles rate limit exceeded errors
	ErrorHandler func(c echo.Context, retryAfter time.Duration) error

	// EndpointPatterns limits the middleware to matching requests. Empty means every request.
	EndpointPatterns []string

	// Metrics records rejected requests. Optional.
	Metrics *metrics.SystemHealthMetrics
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Skipper: func(_ echo.Context) bool {
			return !config.ServiceRateLimitEnabled.GetBool()
		},
		RequestsPerMinute: config.ServiceRateLimitRequestsPerMinute.GetInt(),
		WindowMinutes:     config.ServiceRateLimitWindowMinutes.GetInt(),
		KeyGenerator:      defaultKeyGenerator,
		ErrorHandler:      apierrors.HandleTooManyRequestsError,
		EndpointPatterns:  DefaultRateLimitPatterns,
	}
}

// RateLimit returns a rate limiting middleware with default configuration
func RateLimit(rateLimiter ratelimit.RateLimiter) echo.MiddlewareFunc {
	cfg := DefaultRateLimitConfig()
	cfg.RateLimiter = rateLimiter
	return RateLimitWithConfig(cfg)
}

// RateLimitWithConfig returns a rate limiting middleware with custom configuration.
// Limiter failures let the request through.
func RateLimitWithConfig(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = defaultKeyGenerator
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = apierrors.HandleTooManyRequestsError
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.WindowMinutes <= 0 {
		cfg.WindowMinutes = 1
	}
	window := time.Duration(cfg.WindowMinutes) * time.Minute

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.RateLimiter == nil || cfg.Skipper(c) {
				return next(c)
			}
			if len(cfg.EndpointPatterns) > 0 && !matchesEndpointPatterns(c, cfg.EndpointPatterns) {
				return next(c)
			}

			key := cfg.KeyGenerator(c)
			if key == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			allowed, retryAfter, err := cfg.RateLimiter.Allow(ctx, key, cfg.RequestsPerMinute, window)
			if err != nil {
				helper.GetRequestLogger(c).Error("Rate limiter unavailable, allowing request",
					slog.String("error", err.Error()))
				return next(c)
			}

			if !allowed {
				cfg.Metrics.RecordRateLimited(ctx, c.Path())
				return cfg.ErrorHandler(c, retryAfter)
			}

			return next(c)
		}
	}
}

// defaultKeyGenerator keys requests by client address and path
func defaultKeyGenerator(c echo.Context) string {
	return fmt.Sprintf("ip:%s:%s", c.RealIP(), c.Request().URL.Path)
}

// matchesEndpointPatterns checks if the current request matches any of the specified patterns
func matchesEndpointPatterns(c echo.Context, patterns []string) bool {
	path := c.Request().URL.Path
	method := c.Request().Method

	for _, pattern := range patterns {
		if matchesPattern(method, path, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks if a method and path match a pattern.
// Pattern format: "METHOD:/path/pattern" or "/path/pattern" (any method).
// Supports wildcards: * for any segment, ** for any number of segments.
func matchesPattern(method, path, pattern string) bool {
	patternMethod, patternPath := "*", pattern
	if m, p, ok := strings.Cut(pattern, ":"); ok {
		patternMethod, patternPath = m, p
	}

	if patternMethod != "*" && patternMethod != method {
		return false
	}

	return matchesPathPattern(path, patternPath)
}

// matchesPathPattern checks if a path matches a pattern with wildcards
func matchesPathPattern(path, pattern string) bool {
	if pattern == path {
		return true
	}

	if strings.Contains(pattern, "*") {
		pathParts := strings.Split(strings.Trim(path, "/"), "/")
		patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
		return matchesWildcardParts(pathParts, patternParts)
	}

	// "/authn/login" matches "/api/v1/authn/login"
	return strings.HasSuffix(path, pattern)
}

// matchesWildcardParts performs recursive wildcard matching on path parts
func matchesWildcardParts(pathParts, patternParts []string) bool {
	if len(patternParts) == 0 {
		return len(pathParts) == 0
	}

	if len(pathParts) == 0 {
		// only ** can match zero segments
		for _, part := range patternParts {
			if part != "**" {
				return false
			}
		}
		return true
	}

	switch pattern := patternParts[0]; pattern {
	case "**":
		if len(patternParts) == 1 {
			return true
		}
		for i := 0; i <= len(pathParts); i++ {
			if matchesWildcardParts(pathParts[i:], patternParts[1:]) {
				return true
			}
		}
		return false
	case "*":
		return matchesWildcardParts(pathParts[1:], patternParts[1:])
	default:
		if pattern != pathParts[0] {
			return false
		}
		return matchesWildcardParts(pathParts[1:], patternParts[1:])
	}
}
