// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package routes defines the routes for the echo server.
package routes

import (
	"os"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/promptsmith/promptsmith-api/controllers"
	"github.com/promptsmith/promptsmith-api/internal/config"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/internal/metrics"
	"github.com/promptsmith/promptsmith-api/internal/ratelimit"
	"github.com/promptsmith/promptsmith-api/internal/telemetry"
	"github.com/promptsmith/promptsmith-api/middlewares"
	"github.com/promptsmith/promptsmith-api/models"
)

// RouteService is a struct that holds the echo instance, the versioned API group,
// the storage service, the database pool, the redis client and the auth gate
type RouteService struct {
	e                 *echo.Echo
	routerGroup       *echo.Group
	service           models.Querier
	pool              *pgxpool.Pool
	rdb               *redis.Client
	authGate          controllers.Authenticator
	limiter           ratelimit.RateLimiter
	telemetryProvider *telemetry.Provider
	authMetrics       *metrics.AuthMetrics
	healthMetrics     *metrics.SystemHealthMetrics
}

// NewRouteService creates a new RouteService
func NewRouteService(
	e *echo.Echo,
	service models.Querier,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	authGate controllers.Authenticator,
) *RouteService {
	r := &RouteService{
		e:        e,
		service:  service,
		pool:     pool,
		rdb:      rdb,
		authGate: authGate,
	}
	if rdb != nil {
		r.limiter = ratelimit.NewRedisRateLimiter(rdb)
	}
	return r
}

// NewRouteServiceWithTelemetry creates a new RouteService with telemetry provider
func NewRouteServiceWithTelemetry(
	e *echo.Echo,
	service models.Querier,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	authGate controllers.Authenticator,
	telemetryProvider *telemetry.Provider,
	healthMetrics *metrics.SystemHealthMetrics,
) *RouteService {
	r := NewRouteService(e, service, pool, rdb, authGate)
	r.telemetryProvider = telemetryProvider
	r.healthMetrics = healthMetrics
	return r
}

// APIPrefix returns the versioned path prefix, e.g. /api/v1
func APIPrefix() string {
	prefix := strings.Trim(config.ServiceAPIPrefix.GetString(), "/")
	if prefix == "" {
		return "/v1"
	}
	return "/" + prefix + "/v1"
}

// NewEcho returns an echo instance with the common middlewares installed
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(os.Stdout)
	if config.ServiceDevMode.GetBool() {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}
	e.Validator = helper.NewValidator()

	// Middlewares
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: config.ServiceCorsAllowCredentials.GetBool(),
		AllowOrigins:     config.ServiceCorsAllowOrigins.GetStringSlice(),
		AllowMethods:     config.ServiceCorsAllowMethods.GetStringSlice(),
		MaxAge:           config.ServiceCorsMaxAge.GetInt(),
	}))

	if limit := config.ServiceBodyLimit.GetString(); limit != "" {
		e.Use(middleware.BodyLimit(limit))
	}

	secure := middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: config.ServiceContentSecurityPolicy.GetString(),
	}
	if !config.ServiceDevMode.GetBool() {
		secure.HSTSMaxAge = 31536000
	}
	e.Use(middleware.SecureWithConfig(secure))

	return e
}

// LoadRoutes loads the routes for the echo server
func LoadRoutes(r *RouteService) error {
	return LoadRoutesWithOptions(r, true)
}

// LoadRoutesWithOptions loads the routes for the echo server with additional options
func LoadRoutesWithOptions(r *RouteService, startServer bool) error {
	if r.telemetryProvider.IsEnabled() {
		cfg := r.telemetryProvider.GetConfig()
		middlewares.SetupGlobalPropagator()

		if cfg.TracingEnabled {
			r.e.Use(middlewares.HTTPTracingWithConfig(middlewares.HTTPTracingConfig{
				TracerProvider: r.telemetryProvider.GetTracerProvider(),
				ServiceName:    cfg.ServiceName,
			}))
		}

		if cfg.MetricsEnabled {
			r.e.Use(middlewares.HTTPInstrumentationWithConfig(middlewares.HTTPInstrumentationConfig{
				Meter:       r.telemetryProvider.GetMeter("promptsmith-api-http"),
				ServiceName: cfg.ServiceName,
			}))

			m, err := metrics.NewAuthMetrics(metrics.AuthMetricsConfig{
				Meter:       r.telemetryProvider.GetMeter("promptsmith-api-auth"),
				ServiceName: cfg.ServiceName,
			})
			if err != nil {
				log.Warnf("Failed to create auth metrics: %v", err)
			}
			r.authMetrics = m
		}

		if err := telemetry.RegisterMetricsEndpoint(r.e, r.telemetryProvider, cfg); err != nil {
			log.Warnf("Failed to register metrics endpoint: %v", err)
		}
	}

	r.routerGroup = r.e.Group(APIPrefix())

	// Load routes using reflection by looking for methods ending in "Routes"
	reflType := reflect.TypeOf(r)
	for i := 0; i < reflType.NumMethod(); i++ {
		method := reflType.Method(i)
		if strings.HasSuffix(method.Name, "Routes") {
			reflect.ValueOf(r).MethodByName(method.Name).Call(nil)
		}
	}

	if startServer {
		if err := r.e.Start(config.GetServerAddress()); err != nil {
			return err
		}
	}

	return nil
}

// requireAdmin returns the admin session middleware for privileged routes
func (r *RouteService) requireAdmin() echo.MiddlewareFunc {
	return middlewares.RequireAdminWithConfig(middlewares.AdminSessionConfig{
		Authorizer: r.authGate,
		CookieName: config.ServiceSessionCookieName.GetString(),
		Metrics:    r.authMetrics,
	})
}
