// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package tracing provides business-specific distributed tracing utilities
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/promptsmith/promptsmith-api/internal/auth/gate"
)

// ErrorCategory constants for categorizing errors
const (
	ErrorCategoryValidation     = "validation"
	ErrorCategoryDatabase       = "database"
	ErrorCategoryNotFound       = "not_found"
	ErrorCategoryAuthentication = "authentication"
	ErrorCategoryAuthorization  = "authorization"
	ErrorCategoryConfiguration  = "configuration"
	ErrorCategoryTimeout        = "timeout"
	ErrorCategoryInternal       = "internal"
)

// BusinessTracer provides tracing utilities for business logic operations
type BusinessTracer struct {
	tracer      trace.Tracer
	serviceName string
}

// BusinessTracerConfig holds configuration for business tracing
type BusinessTracerConfig struct {
	TracerProvider trace.TracerProvider
	ServiceName    string
}

// NewBusinessTracer creates a new business tracer
func NewBusinessTracer(config BusinessTracerConfig) *BusinessTracer {
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}

	if config.ServiceName == "" {
		config.ServiceName = "promptsmith-api"
	}

	tracer := config.TracerProvider.Tracer(
		"business-logic",
		trace.WithInstrumentationVersion("1.0.0"),
	)

	return &BusinessTracer{
		tracer:      tracer,
		serviceName: config.ServiceName,
	}
}

// TraceOperation wraps a business operation with tracing
func (bt *BusinessTracer) TraceOperation(ctx context.Context, operationName string, f func(context.Context) error) error {
	ctx, span := bt.tracer.Start(ctx, operationName, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String("service.name", bt.serviceName),
		attribute.String("service.component", "business-logic"),
		attribute.String("operation.name", operationName),
	)

	err := f(ctx)
	bt.finish(span, err, "operation.success")
	return err
}

// TraceAuthentication traces an admin authentication step (login, enroll).
// Credentials never reach the span.
func (bt *BusinessTracer) TraceAuthentication(ctx context.Context, authType string, f func(context.Context) error) error {
	ctx, span := bt.tracer.Start(ctx, fmt.Sprintf("Authentication.%s", authType), trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String("service.name", bt.serviceName),
		attribute.String("service.component", "authentication"),
		attribute.String("auth.type", authType),
	)

	start := time.Now()
	err := f(ctx)
	span.SetAttributes(attribute.Int64("operation.duration_ms", time.Since(start).Milliseconds()))

	if err != nil {
		span.SetAttributes(attribute.String("auth.failure_reason", err.Error()))
	}
	bt.finish(span, err, "auth.success")
	return err
}

// TraceAdvertisement traces a mutation of a single advertisement
func (bt *BusinessTracer) TraceAdvertisement(ctx context.Context, adID, operation string, f func(context.Context) error) error {
	ctx, span := bt.tracer.Start(ctx, fmt.Sprintf("Advertisement.%s", operation), trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String("service.name", bt.serviceName),
		attribute.String("service.component", "advertisements"),
		attribute.String("advertisement.id", adID),
		attribute.String("advertisement.operation", operation),
	)

	err := f(ctx)
	bt.finish(span, err, "operation.success")
	return err
}

func (bt *BusinessTracer) finish(span trace.Span, err error, successKey string) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.Bool(successKey, false),
			attribute.String("error.category", CategorizeError(err)),
		)
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.Bool(successKey, true))
}

// RecordError records an error in the current span
func (bt *BusinessTracer) RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.category", CategorizeError(err)))
}

// CategorizeError maps an error to one of the ErrorCategory constants
func CategorizeError(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gate.ErrInvalidCredentials), errors.Is(err, gate.ErrInvalid2FA):
		return ErrorCategoryAuthentication
	case errors.Is(err, gate.ErrUnauthorized):
		return ErrorCategoryAuthorization
	case errors.Is(err, gate.ErrNotConfigured):
		return ErrorCategoryConfiguration
	case errors.Is(err, pgx.ErrNoRows):
		return ErrorCategoryNotFound
	case errors.As(err, &pgErr):
		if pgErr.Code == "23514" || pgErr.Code == "23502" {
			return ErrorCategoryValidation
		}
		return ErrorCategoryDatabase
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryTimeout
	default:
		return ErrorCategoryInternal
	}
}

// Global business tracer instance (initialized when needed)
var globalBusinessTracer *BusinessTracer

// InitGlobalBusinessTracer initializes the global business tracer
func InitGlobalBusinessTracer(config BusinessTracerConfig) {
	globalBusinessTracer = NewBusinessTracer(config)
}

// GetGlobalBusinessTracer returns the global business tracer
func GetGlobalBusinessTracer() *BusinessTracer {
	if globalBusinessTracer == nil {
		globalBusinessTracer = NewBusinessTracer(BusinessTracerConfig{})
	}
	return globalBusinessTracer
}

// TraceOperation wraps a business operation with tracing using the global tracer
func TraceOperation(ctx context.Context, operationName string, f func(context.Context) error) error {
	return GetGlobalBusinessTracer().TraceOperation(ctx, operationName, f)
}

// TraceAuthentication traces authentication operations using the global tracer
func TraceAuthentication(ctx context.Context, authType string, f func(context.Context) error) error {
	return GetGlobalBusinessTracer().TraceAuthentication(ctx, authType, f)
}

// TraceAdvertisement traces advertisement mutations using the global tracer
func TraceAdvertisement(ctx context.Context, adID, operation string, f func(context.Context) error) error {
	return GetGlobalBusinessTracer().TraceAdvertisement(ctx, adID, operation, f)
}

// RecordError records an error in the current span using the global tracer
func RecordError(ctx context.Context, err error) {
	GetGlobalBusinessTracer().RecordError(ctx, err)
}
