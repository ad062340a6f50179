// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedContext wraps a context and its current span
type TracedContext struct {
	context.Context
	span trace.Span
}

// NewTracedContext creates a new TracedContext from a context.
// Without a span in ctx every method is a no-op.
func NewTracedContext(ctx context.Context) *TracedContext {
	return &TracedContext{
		Context: ctx,
		span:    trace.SpanFromContext(ctx),
	}
}

// Span returns the underlying span
func (tc *TracedContext) Span() trace.Span {
	return tc.span
}

func (tc *TracedContext) recording() bool {
	return tc.span != nil && tc.span.IsRecording()
}

// AddAttr adds a single attribute to the span
func (tc *TracedContext) AddAttr(key string, value interface{}) {
	if !tc.recording() {
		return
	}
	tc.span.SetAttributes(convertToAttribute(key, value))
}

// AddAttrs adds multiple attributes to the span at once
func (tc *TracedContext) AddAttrs(attrs map[string]interface{}) {
	if !tc.recording() {
		return
	}

	converted := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		converted = append(converted, convertToAttribute(key, value))
	}
	tc.span.SetAttributes(converted...)
}

// RecordError records err on the span with its category
func (tc *TracedContext) RecordError(err error) {
	if !tc.recording() || err == nil {
		return
	}

	tc.span.RecordError(err)
	tc.span.SetStatus(codes.Error, err.Error())
	tc.span.SetAttributes(
		attribute.String("error.category", CategorizeError(err)),
		attribute.String("error.type", fmt.Sprintf("%T", err)),
	)
}

// MarkFailure marks the current operation as failed
func (tc *TracedContext) MarkFailure(reason string) {
	if tc.recording() {
		tc.span.SetStatus(codes.Error, reason)
		tc.span.SetAttributes(
			attribute.Bool("operation.success", false),
			attribute.String("operation.failure_reason", reason),
		)
	}
}

func convertToAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
