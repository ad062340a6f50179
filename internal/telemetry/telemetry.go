// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package telemetry provides OpenTelemetry initialization and management
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Provider manages OpenTelemetry providers and their lifecycle
type Provider struct {
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	resource       *resource.Resource
	config         *Config
}

// Config holds the telemetry configuration
type Config struct {
	Enabled                   bool
	ServiceName               string
	ServiceVersion            string
	OTLPEndpoint              string
	OTLPHeaders               map[string]string
	OTLPInsecure              bool
	PrometheusEnabled         bool
	PrometheusEndpoint        string
	PrometheusExcludePrefixes []string
	TracingEnabled            bool
	TracingSampleRate         float64
	MetricsEnabled            bool
	ResourceAttributes        map[string]string
}

// NewProvider creates a new telemetry provider with the given configuration
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("telemetry config cannot be nil")
	}

	provider := &Provider{config: config}
	if !config.Enabled {
		return provider, nil
	}

	res, err := provider.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	provider.resource = res

	if config.TracingEnabled {
		tp, err := provider.createTraceProvider(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace provider: %w", err)
		}
		provider.traceProvider = tp
		otel.SetTracerProvider(tp)
	}

	if config.MetricsEnabled {
		mp, err := provider.createMetricProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create metric provider: %w", err)
		}
		provider.metricProvider = mp
		otel.SetMeterProvider(mp)
	}

	return provider, nil
}

// Shutdown flushes and stops all telemetry providers
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}

	var errs []error
	if p.traceProvider != nil {
		if err := p.traceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown trace provider: %w", err))
		}
	}
	if p.metricProvider != nil {
		if err := p.metricProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metric provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

// GetTracer returns a tracer for the given name
func (p *Provider) GetTracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p.traceProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return p.traceProvider.Tracer(name, opts...)
}

// GetTracerProvider returns the SDK tracer provider, or the global one when tracing is off
func (p *Provider) GetTracerProvider() trace.TracerProvider {
	if p == nil || p.traceProvider == nil {
		return otel.GetTracerProvider()
	}
	return p.traceProvider
}

// GetConfig returns the configuration the provider was built from
func (p *Provider) GetConfig() *Config {
	if p == nil {
		return nil
	}
	return p.config
}

// GetMeter returns a meter for the given name
func (p *Provider) GetMeter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.metricProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.metricProvider.Meter(name, opts...)
}

// IsEnabled returns whether telemetry is enabled
func (p *Provider) IsEnabled() bool {
	return p != nil && p.config != nil && p.config.Enabled
}

// GetResource returns the telemetry resource
func (p *Provider) GetResource() *resource.Resource {
	return p.resource
}

// WithShutdownTimeout creates a context with a timeout for shutdown operations
func WithShutdownTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (p *Provider) createTraceProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporters, err := NewExporterFactory(p.config).CreateTraceExporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporters: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(p.resource),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TracingSampleRate))),
	}
	for _, exporter := range exporters {
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(
			exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		)))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// createMetricProvider exports into a registry owned by the provider, next to
// the Go runtime and process collectors.
func (p *Provider) createMetricProvider() (*sdkmetric.MeterProvider, error) {
	p.registry = prometheus.NewRegistry()
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	readers, err := NewExporterFactory(p.config).CreateMetricReaders(p.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric readers: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(p.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	for _, view := range defaultViews() {
		opts = append(opts, sdkmetric.WithView(view))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// defaultViews sets bucket boundaries for the millisecond histograms
func defaultViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth_login_duration_ms"},
			sdkmetric.Stream{
				// bcrypt at cost 12 dominates a login, so the buckets start high
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{10, 50, 100, 200, 300, 500, 750, 1000, 2000, 5000},
				},
			},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "system_storage_operation_duration_ms"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
				},
			},
		),
	}
}
