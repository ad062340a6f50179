// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus exposition of the metric provider
type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewMetricsHandler creates a new metrics handler over the provider's registry
func NewMetricsHandler(provider *Provider, config *Config) (*MetricsHandler, error) {
	if !config.Enabled || !config.PrometheusEnabled {
		return nil, fmt.Errorf("prometheus metrics not enabled")
	}
	if provider == nil || provider.registry == nil {
		return nil, fmt.Errorf("metric provider not initialized in telemetry provider")
	}

	return &MetricsHandler{
		gatherer: CreateFilterFromConfig(config).Filter(provider.registry),
	}, nil
}

// Handler returns the HTTP handler for Prometheus metrics
func (h *MetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Timeout:           5 * time.Second,
	})
}

// EchoHandler returns an Echo handler for Prometheus metrics
func (h *MetricsHandler) EchoHandler() echo.HandlerFunc {
	return echo.WrapHandler(h.Handler())
}

// RegisterMetricsEndpoint registers the metrics endpoint with the Echo router.
// It is a no-op when telemetry or the Prometheus exporter is disabled.
func RegisterMetricsEndpoint(e *echo.Echo, provider *Provider, config *Config) error {
	if config == nil || !config.Enabled || !config.PrometheusEnabled {
		return nil
	}

	handler, err := NewMetricsHandler(provider, config)
	if err != nil {
		return fmt.Errorf("failed to create metrics handler: %w", err)
	}

	e.GET(config.PrometheusEndpoint, handler.EchoHandler())
	return nil
}
