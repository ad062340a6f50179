// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package middlewares

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace id back to the client.
const TraceIDHeader = "X-Trace-Id"

// HTTPTracingConfig holds configuration for HTTP tracing middleware
type HTTPTracingConfig struct {
	Skipper        middleware.Skipper
	TracerProvider trace.TracerProvider
	ServiceName    string
	Propagator     propagation.TextMapPropagator
}

// HTTPTracing returns otelecho tracing followed by request level span attributes.
func HTTPTracing(tracerProvider trace.TracerProvider) echo.MiddlewareFunc {
	return HTTPTracingWithConfig(HTTPTracingConfig{TracerProvider: tracerProvider})
}

// HTTPTracingWithConfig returns a middleware with custom configuration
func HTTPTracingWithConfig(cfg HTTPTracingConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}

	base := otelecho.Middleware(
		cfg.ServiceName,
		otelecho.WithTracerProvider(cfg.TracerProvider),
		otelecho.WithPropagators(cfg.Propagator),
		otelecho.WithSkipper(cfg.Skipper),
	)

	enrich := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			span := trace.SpanFromContext(c.Request().Context())
			if !span.IsRecording() {
				return next(c)
			}

			req := c.Request()
			if route := c.Path(); route != "" {
				span.SetName(fmt.Sprintf("HTTP %s %s", req.Method, route))
			}
			span.SetAttributes(
				attribute.String("service.component", "http"),
				attribute.String("http.client_ip", c.RealIP()),
				attribute.String("http.request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			if sc := span.SpanContext(); sc.IsValid() {
				c.Response().Header().Set(TraceIDHeader, sc.TraceID().String())
			}

			err := next(c)
			if err != nil {
				recordErrorInSpan(span, err)
			}
			return err
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return base(enrich(next))
	}
}

// recordErrorInSpan marks 5xx and non-HTTP errors as span errors. Client errors leave
// the status unset.
func recordErrorInSpan(span trace.Span, err error) {
	span.RecordError(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		span.SetAttributes(attribute.Int("http.status_code", he.Code))
		if he.Code >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d: %v", he.Code, he.Message))
		}
		return
	}
	span.SetStatus(codes.Error, err.Error())
}

// StartSpan starts a child span on the global tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(DefaultServiceName).Start(ctx, name, opts...)
}

// SetupGlobalPropagator installs W3C trace context and baggage propagation.
func SetupGlobalPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}
