// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func requestCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("route"))
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				counts[route.AsString()+" "+status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestHTTPInstrumentation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	e := echo.New()
	e.Use(HTTPInstrumentation(provider.Meter("test")))
	e.GET("/ads", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ads": []string{}})
	})
	e.DELETE("/ads/:id", func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "nope")
	})

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/ads"},
		{http.MethodGet, "/ads"},
		{http.MethodDelete, "/ads/abc"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
	}

	counts := requestCounts(t, reader)
	assert.Equal(t, int64(2), counts["/ads 200"])
	assert.Equal(t, int64(1), counts["/ads/:id 403"])
}

func TestHTTPInstrumentationSkipper(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	e := echo.New()
	e.Use(HTTPInstrumentationWithConfig(HTTPInstrumentationConfig{
		Meter:       provider.Meter("test"),
		ServiceName: "test-service",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health-check"
		},
	}))
	e.GET("/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health-check", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, requestCounts(t, reader))
}

func TestHTTPInstrumentationNilMeter(t *testing.T) {
	e := echo.New()
	e.Use(HTTPInstrumentation(nil))
	e.GET("/ads", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ads", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(401))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "unknown", statusClass(0))
	assert.Equal(t, "unknown", statusClass(600))
}
