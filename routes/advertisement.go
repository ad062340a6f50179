// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/promptsmith/promptsmith-api/controllers"
)

// AdvertisementRoutes defines the public ad listing and the admin ad management routes
func (r *RouteService) AdvertisementRoutes() {
	log.Info("Loading advertisement routes")
	c := controllers.NewAdvertisementController(r.service)
	admin := r.requireAdmin()

	r.routerGroup.GET("/ads", c.ListActiveAdvertisements)
	r.routerGroup.GET("/admin/ads", c.ListAdvertisements, admin)
	r.routerGroup.POST("/ads", c.CreateAdvertisement, admin)
	r.routerGroup.PUT("/ads/:id", c.UpdateAdvertisement, admin)
	r.routerGroup.DELETE("/ads/:id", c.DeleteAdvertisement, admin)
}
