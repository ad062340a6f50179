// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package middlewares

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultServiceName labels HTTP metrics and spans when none is configured.
const DefaultServiceName = "promptsmith-api"

// HTTPInstrumentationConfig holds configuration for HTTP instrumentation middleware
type HTTPInstrumentationConfig struct {
	Skipper     middleware.Skipper
	Meter       metric.Meter
	ServiceName string
}

type httpInstruments struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// HTTPInstrumentation returns a middleware that records request count, duration,
// response size and in-flight requests per route.
func HTTPInstrumentation(meter metric.Meter) echo.MiddlewareFunc {
	return HTTPInstrumentationWithConfig(HTTPInstrumentationConfig{Meter: meter})
}

// HTTPInstrumentationWithConfig returns a middleware with custom configuration.
// Without a usable meter it passes requests through untouched.
func HTTPInstrumentationWithConfig(cfg HTTPInstrumentationConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	instruments, err := newHTTPInstruments(cfg.Meter)
	if err != nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			ctx := c.Request().Context()
			start := time.Now()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			base := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", route),
				attribute.String("service", cfg.ServiceName),
			)
			instruments.activeRequests.Add(ctx, 1, base)
			defer instruments.activeRequests.Add(ctx, -1, base)

			err := next(c)
			if err != nil {
				// commit the error response so the status below is the one sent
				c.Error(err)
			}

			res := c.Response()
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", route),
				attribute.String("status", strconv.Itoa(res.Status)),
				attribute.String("status_class", statusClass(res.Status)),
				attribute.String("service", cfg.ServiceName),
			)

			instruments.requestDuration.Record(ctx, float64(time.Since(start).Nanoseconds())/1e6, attrs)
			instruments.requestCounter.Add(ctx, 1, attrs)
			if res.Size > 0 {
				instruments.responseSize.Record(ctx, res.Size, attrs)
			}

			return err
		}
	}
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	if meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}

	i := &httpInstruments{}
	var err error

	if i.requestDuration, err = meter.Float64Histogram(
		"http_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if i.requestCounter, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if i.responseSize, err = meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("bytes"),
	); err != nil {
		return nil, err
	}
	if i.activeRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	return i, nil
}

// statusClass returns 1xx..5xx for a status code
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
