// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ExporterFactory creates exporters based on configuration
type ExporterFactory struct {
	config *Config
}

// NewExporterFactory creates a new exporter factory
func NewExporterFactory(config *Config) *ExporterFactory {
	return &ExporterFactory{config: config}
}

// CreateTraceExporters creates trace exporters based on configuration
func (f *ExporterFactory) CreateTraceExporters(ctx context.Context) ([]sdktrace.SpanExporter, error) {
	if f.config.OTLPEndpoint == "" {
		return nil, fmt.Errorf("no trace exporters configured")
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(f.config.OTLPEndpoint),
	}
	if len(f.config.OTLPHeaders) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(f.config.OTLPHeaders))
	}
	if f.config.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12}))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return []sdktrace.SpanExporter{exporter}, nil
}

// CreateMetricReaders creates metric readers registering with reg
func (f *ExporterFactory) CreateMetricReaders(reg prometheus.Registerer) ([]metric.Reader, error) {
	if !f.config.PrometheusEnabled {
		return nil, fmt.Errorf("no metric readers configured")
	}

	reader, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus reader: %w", err)
	}
	return []metric.Reader{reader}, nil
}

// ValidateExporterConfig validates the exporter configuration
func ValidateExporterConfig(config *Config) error {
	if !config.Enabled {
		return nil
	}

	if config.OTLPEndpoint == "" && !config.PrometheusEnabled {
		return fmt.Errorf("telemetry is enabled but no exporters are configured")
	}
	if config.MetricsEnabled && !config.PrometheusEnabled {
		return fmt.Errorf("metrics are enabled but the prometheus exporter is disabled")
	}
	if config.TracingEnabled && config.OTLPEndpoint == "" {
		return fmt.Errorf("tracing is enabled but no OTLP endpoint is configured")
	}

	// otlptracehttp expects host:port, not a URL
	if config.OTLPEndpoint != "" {
		if strings.Contains(config.OTLPEndpoint, "://") {
			return fmt.Errorf("OTLP endpoint must be host:port without a scheme, got %q", config.OTLPEndpoint)
		}
		if !strings.Contains(config.OTLPEndpoint, ":") {
			return fmt.Errorf("OTLP endpoint must include a port, got %q", config.OTLPEndpoint)
		}
	}

	if config.PrometheusEnabled && !strings.HasPrefix(config.PrometheusEndpoint, "/") {
		return fmt.Errorf("prometheus endpoint must be an absolute path, got %q", config.PrometheusEndpoint)
	}

	if config.TracingSampleRate < 0.0 || config.TracingSampleRate > 1.0 {
		return fmt.Errorf("tracing sample rate must be between 0.0 and 1.0, got %f", config.TracingSampleRate)
	}

	return nil
}
