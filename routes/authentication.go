// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/promptsmith/promptsmith-api/controllers"
	"github.com/promptsmith/promptsmith-api/internal/config"
	"github.com/promptsmith/promptsmith-api/middlewares"
)

// AuthnRoutes defines the routes for the admin authentication endpoints
func (r *RouteService) AuthnRoutes() {
	log.Info("Loading authentication routes")
	c := controllers.NewAuthenticationController(
		r.authGate,
		r.authMetrics,
		controllers.SessionCookie{
			Name:   config.ServiceSessionCookieName.GetString(),
			Secure: !config.ServiceDevMode.GetBool(),
			TTL:    config.ServiceSessionTTL.GetDuration(),
		},
		controllers.Enrollment{
			SetupCode: config.AdminSetupCode.GetString(),
			Issuer:    config.ServiceTotpIssuer.GetString(),
			Account:   config.ServiceTotpAccount.GetString(),
		},
		nil,
	)

	limit := middlewares.DefaultRateLimitConfig()
	limit.RateLimiter = r.limiter
	limit.Metrics = r.healthMetrics

	g := r.routerGroup.Group("/authn", middlewares.RateLimitWithConfig(limit))
	g.POST("/login", c.Login)
	g.GET("/session", c.Session)
	g.POST("/logout", c.Logout)
	g.POST("/enroll", c.Enroll)
}
