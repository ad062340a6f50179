// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultShutdownTimeout is the default timeout for telemetry shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Initialize sets up OpenTelemetry from the loaded configuration
func Initialize(ctx context.Context) (*Provider, *Config, error) {
	cfg, err := LoadConfigFromViper()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load telemetry configuration: %w", err)
	}

	if cfg.Enabled {
		slog.Info("Initializing OpenTelemetry",
			"service", cfg.ServiceName,
			"version", cfg.ServiceVersion,
			"tracing", cfg.TracingEnabled,
			"metrics", cfg.MetricsEnabled,
			"sampleRate", cfg.TracingSampleRate)
	} else {
		slog.Info("OpenTelemetry is disabled")
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	return provider, cfg, nil
}

// Shutdown shuts down the telemetry provider with DefaultShutdownTimeout
func Shutdown(provider *Provider) error {
	return ShutdownWithTimeout(provider, DefaultShutdownTimeout)
}

// ShutdownWithTimeout shuts down the telemetry provider with a custom timeout
func ShutdownWithTimeout(provider *Provider, timeout time.Duration) error {
	if !provider.IsEnabled() {
		return nil
	}

	ctx, cancel := WithShutdownTimeout(context.Background(), timeout)
	defer cancel()

	if err := provider.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry", "timeout", timeout, "error", err)
		return err
	}

	slog.Info("OpenTelemetry shutdown completed")
	return nil
}
