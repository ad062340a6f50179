// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds each dependency check.
const pingTimeout = 2 * time.Second

// DBInterface defines the interface for database operations
type DBInterface interface {
	Ping(ctx context.Context) error
}

// RedisInterface defines the interface for Redis operations
type RedisInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthCheckController struct {
	dbPool DBInterface
	rdb    RedisInterface
}

func NewHealthCheckController(dbPool DBInterface, rdb RedisInterface) *HealthCheckController {
	return &HealthCheckController{dbPool: dbPool, rdb: rdb}
}

type HealthCheckResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

// HealthCheck godoc
// @Summary Health check
// @Description Pings PostgreSQL and Redis. Always answers 200; status is DEGRADED when a dependency is down.
// @Tags health
// @Produce json
// @Success 200 {object} HealthCheckResponse
// @Router /health-check [get]
func (ctr *HealthCheckController) HealthCheck(c echo.Context) error {
	status := ctr.DependencyStatus(c.Request().Context())

	resp := &HealthCheckResponse{
		Status:   "OK",
		Postgres: upDown(status["postgres"]),
		Redis:    upDown(status["redis"]),
	}
	if !status["postgres"] || !status["redis"] {
		resp.Status = "DEGRADED"
	}

	return c.JSON(http.StatusOK, resp)
}

// DependencyStatus pings every dependency and reports which ones answered. It also
// feeds the dependency status gauge.
func (ctr *HealthCheckController) DependencyStatus(ctx context.Context) map[string]bool {
	status := map[string]bool{"postgres": false, "redis": false}

	if ctr.dbPool != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		status["postgres"] = ctr.dbPool.Ping(pingCtx) == nil
		cancel()
	}
	if ctr.rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		status["redis"] = ctr.rdb.Ping(pingCtx).Err() == nil
		cancel()
	}

	return status
}

func upDown(up bool) string {
	if up {
		return "UP"
	}
	return "DOWN"
}
