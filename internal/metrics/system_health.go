// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SystemHealthMetrics tracks storage operations, rate limiting and dependency health
type SystemHealthMetrics struct {
	storageDuration metric.Float64Histogram
	storageCounter  metric.Int64Counter
	storageErrors   metric.Int64Counter

	rateLimited metric.Int64Counter

	dependencyStatus metric.Int64ObservableGauge
	serviceUptime    metric.Float64ObservableGauge

	serviceName string
	startTime   time.Time

	getDependencyStatus func(ctx context.Context) map[string]bool
}

// SystemHealthMetricsConfig holds configuration for system health metrics
type SystemHealthMetricsConfig struct {
	Meter       metric.Meter
	ServiceName string

	// GetDependencyStatus reports reachability per dependency name (postgres, redis)
	GetDependencyStatus func(ctx context.Context) map[string]bool
}

// NewSystemHealthMetrics creates a new system health metrics collector
func NewSystemHealthMetrics(config SystemHealthMetricsConfig) (*SystemHealthMetrics, error) {
	if config.Meter == nil {
		return nil, fmt.Errorf("meter is required")
	}

	if config.ServiceName == "" {
		config.ServiceName = "promptsmith-api"
	}

	metrics := &SystemHealthMetrics{
		serviceName:         config.ServiceName,
		startTime:           time.Now(),
		getDependencyStatus: config.GetDependencyStatus,
	}

	var err error

	metrics.storageDuration, err = config.Meter.Float64Histogram(
		"system_storage_operation_duration_ms",
		metric.WithDescription("Duration of advertisement storage operations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage duration histogram: %w", err)
	}

	metrics.storageCounter, err = config.Meter.Int64Counter(
		"system_storage_operations_total",
		metric.WithDescription("Total number of advertisement storage operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage operations counter: %w", err)
	}

	metrics.storageErrors, err = config.Meter.Int64Counter(
		"system_storage_errors_total",
		metric.WithDescription("Total number of failed advertisement storage operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage errors counter: %w", err)
	}

	metrics.rateLimited, err = config.Meter.Int64Counter(
		"system_rate_limited_total",
		metric.WithDescription("Total number of requests rejected by the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limited counter: %w", err)
	}

	metrics.dependencyStatus, err = config.Meter.Int64ObservableGauge(
		"system_dependency_status",
		metric.WithDescription("Dependency reachability (1=up, 0=down)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dependency status gauge: %w", err)
	}

	metrics.serviceUptime, err = config.Meter.Float64ObservableGauge(
		"system_service_uptime_seconds",
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service uptime gauge: %w", err)
	}

	_, err = config.Meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		service := attribute.String("service", metrics.serviceName)

		o.ObserveFloat64(metrics.serviceUptime, time.Since(metrics.startTime).Seconds(), metric.WithAttributes(service))

		if metrics.getDependencyStatus != nil {
			for name, up := range metrics.getDependencyStatus(ctx) {
				var v int64
				if up {
					v = 1
				}
				o.ObserveInt64(metrics.dependencyStatus, v, metric.WithAttributes(
					service,
					attribute.String("dependency", name),
				))
			}
		}
		return nil
	}, metrics.dependencyStatus, metrics.serviceUptime)
	if err != nil {
		return nil, fmt.Errorf("failed to register system health metrics callback: %w", err)
	}

	return metrics, nil
}

// RecordStorageOperation records a single advertisement storage call
func (m *SystemHealthMetrics) RecordStorageOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("service", m.serviceName),
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	m.storageDuration.Record(ctx, float64(duration.Nanoseconds())/1e6, metric.WithAttributes(attrs...))
	m.storageCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		m.storageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("service", m.serviceName),
			attribute.String("operation", operation),
			attribute.String("error_type", getErrorType(err)),
		))
	}
}

// MeasureStorageOperation wraps a storage call with metrics collection
func (m *SystemHealthMetrics) MeasureStorageOperation(ctx context.Context, operation string, f func() error) error {
	start := time.Now()
	err := f()
	m.RecordStorageOperation(ctx, operation, time.Since(start), err)
	return err
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *SystemHealthMetrics) RecordRateLimited(ctx context.Context, route string) {
	if m == nil {
		return
	}
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", m.serviceName),
		attribute.String("route", route),
	))
}

// getErrorType buckets an error for the error_type attribute
func getErrorType(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "not_found"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "context"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "connection"):
		return "connection"
	case strings.Contains(errStr, "duplicate key"):
		return "conflict"
	default:
		return "unknown"
	}
}
