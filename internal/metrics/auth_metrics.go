// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package metrics provides authentication and advertisement metrics collection
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login failure stages
const (
	StageConfig   = "config"
	StagePassword = "password"
	Stage2FA      = "2fa"
	StageToken    = "token"
)

// AuthMetrics holds the admin login and session metric instruments
type AuthMetrics struct {
	loginAttempts  metric.Int64Counter
	loginSuccesses metric.Int64Counter
	loginFailures  metric.Int64Counter
	loginDuration  metric.Float64Histogram
	mfaFailures    metric.Int64Counter

	tokensIssued    metric.Int64Counter
	tokenValidation metric.Int64Counter

	enrollments metric.Int64Counter
	logouts     metric.Int64Counter
}

// AuthMetricsConfig holds configuration for auth metrics
type AuthMetricsConfig struct {
	Meter       metric.Meter
	ServiceName string
}

// NewAuthMetrics creates a new authentication metrics collector
func NewAuthMetrics(config AuthMetricsConfig) (*AuthMetrics, error) {
	if config.Meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}

	m := &AuthMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.loginAttempts, "auth_login_attempts_total", "Total number of admin login attempts"},
		{&m.loginSuccesses, "auth_login_successes_total", "Total number of successful admin logins"},
		{&m.loginFailures, "auth_login_failures_total", "Total number of failed admin logins by stage"},
		{&m.mfaFailures, "auth_mfa_failures_total", "Total number of rejected TOTP codes"},
		{&m.tokensIssued, "auth_tokens_issued_total", "Total number of session tokens issued"},
		{&m.tokenValidation, "auth_tokens_validated_total", "Total number of session token validations"},
		{&m.enrollments, "auth_enrollments_total", "Total number of TOTP enrollment requests"},
		{&m.logouts, "auth_logouts_total", "Total number of admin logouts"},
	}
	for _, c := range counters {
		*c.dst, err = config.Meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	m.loginDuration, err = config.Meter.Float64Histogram(
		"auth_login_duration_ms",
		metric.WithDescription("Duration of admin login attempts in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login duration histogram: %w", err)
	}

	return m, nil
}

// RecordLoginAttempt records the outcome of a login. stage is ignored on success.
func (m *AuthMetrics) RecordLoginAttempt(ctx context.Context, success bool, stage string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("result", getResultString(success))}
	if !success && stage != "" {
		attrs = append(attrs, attribute.String("stage", stage))
	}
	opt := metric.WithAttributes(attrs...)

	m.loginAttempts.Add(ctx, 1, opt)
	m.loginDuration.Record(ctx, float64(duration.Nanoseconds())/1e6, opt)

	if success {
		m.loginSuccesses.Add(ctx, 1, opt)
		return
	}
	m.loginFailures.Add(ctx, 1, opt)
	if stage == Stage2FA {
		m.mfaFailures.Add(ctx, 1)
	}
}

// RecordTokenIssued records a newly issued session token
func (m *AuthMetrics) RecordTokenIssued(ctx context.Context, role string) {
	if m == nil {
		return
	}
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

// RecordTokenValidation records a session token check
func (m *AuthMetrics) RecordTokenValidation(ctx context.Context, valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.tokenValidation.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordEnrollment records a TOTP enrollment request
func (m *AuthMetrics) RecordEnrollment(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.enrollments.Add(ctx, 1, metric.WithAttributes(attribute.String("result", getResultString(success))))
}

// RecordLogout records a logout
func (m *AuthMetrics) RecordLogout(ctx context.Context) {
	if m == nil {
		return
	}
	m.logouts.Add(ctx, 1)
}

func getResultString(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
