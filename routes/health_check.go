// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/promptsmith/promptsmith-api/controllers"
)

// HealthCheckRoutes Adds health check endpoint to determine if the service is up (useful for load balancers or k8s)
func (r *RouteService) HealthCheckRoutes() {
	if r.pool == nil {
		return
	}
	log.Info("Loading health check routes")

	var rdb controllers.RedisInterface
	if r.rdb != nil {
		rdb = r.rdb
	}
	c := controllers.NewHealthCheckController(r.pool, rdb)
	r.e.GET("/health-check", c.HealthCheck)
}
