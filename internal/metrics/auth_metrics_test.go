// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(resource.Empty()),
		sdkmetric.WithReader(reader),
	)
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	rm := &metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumFor adds up the data points of an int64 sum whose attributes contain kv.
func sumFor(t *testing.T, m metricdata.Metrics, kv ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, want := range kv {
			got, found := dp.Attributes.Value(want.Key)
			if !found || got.Emit() != want.Value.Emit() {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestNewAuthMetrics(t *testing.T) {
	tests := []struct {
		name        string
		config      AuthMetricsConfig
		expectError bool
	}{
		{
			name: "valid config",
			config: AuthMetricsConfig{
				Meter:       noop.NewMeterProvider().Meter("test"),
				ServiceName: "test-service",
			},
		},
		{
			name:        "nil meter",
			config:      AuthMetricsConfig{ServiceName: "test-service"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewAuthMetrics(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "meter cannot be nil")
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m.loginAttempts)
			assert.NotNil(t, m.loginDuration)
			assert.NotNil(t, m.loginSuccesses)
			assert.NotNil(t, m.loginFailures)
			assert.NotNil(t, m.mfaFailures)
			assert.NotNil(t, m.tokensIssued)
			assert.NotNil(t, m.tokenValidation)
			assert.NotNil(t, m.enrollments)
			assert.NotNil(t, m.logouts)
		})
	}
}

func TestAuthMetrics_RecordLoginAttempt(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewAuthMetrics(AuthMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordLoginAttempt(ctx, true, "", 20*time.Millisecond)
	m.RecordLoginAttempt(ctx, false, StagePassword, 5*time.Millisecond)
	m.RecordLoginAttempt(ctx, false, Stage2FA, 7*time.Millisecond)
	m.RecordLoginAttempt(ctx, false, Stage2FA, 7*time.Millisecond)

	got := collect(t, reader)

	assert.Equal(t, int64(4), sumFor(t, got["auth_login_attempts_total"]))
	assert.Equal(t, int64(1), sumFor(t, got["auth_login_successes_total"]))
	assert.Equal(t, int64(3), sumFor(t, got["auth_login_failures_total"]))
	assert.Equal(t, int64(1), sumFor(t, got["auth_login_failures_total"], attribute.String("stage", StagePassword)))
	assert.Equal(t, int64(2), sumFor(t, got["auth_login_failures_total"], attribute.String("stage", Stage2FA)))
	assert.Equal(t, int64(2), sumFor(t, got["auth_mfa_failures_total"]))

	hist, ok := got["auth_login_duration_ms"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(4), count)
}

func TestAuthMetrics_RecordTokenOperations(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewAuthMetrics(AuthMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTokenIssued(ctx, "admin")
	m.RecordTokenValidation(ctx, true)
	m.RecordTokenValidation(ctx, false)
	m.RecordTokenValidation(ctx, false)
	m.RecordEnrollment(ctx, true)
	m.RecordLogout(ctx)

	got := collect(t, reader)

	assert.Equal(t, int64(1), sumFor(t, got["auth_tokens_issued_total"], attribute.String("role", "admin")))
	assert.Equal(t, int64(1), sumFor(t, got["auth_tokens_validated_total"], attribute.String("result", "valid")))
	assert.Equal(t, int64(2), sumFor(t, got["auth_tokens_validated_total"], attribute.String("result", "invalid")))
	assert.Equal(t, int64(1), sumFor(t, got["auth_enrollments_total"], attribute.String("result", "success")))
	assert.Equal(t, int64(1), sumFor(t, got["auth_logouts_total"]))
}

func TestAuthMetrics_NilReceiver(t *testing.T) {
	var m *AuthMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordLoginAttempt(ctx, false, StagePassword, time.Millisecond)
		m.RecordTokenIssued(ctx, "admin")
		m.RecordTokenValidation(ctx, true)
		m.RecordEnrollment(ctx, false)
		m.RecordLogout(ctx)
	})
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "success", getResultString(true))
	assert.Equal(t, "failure", getResultString(false))
}
