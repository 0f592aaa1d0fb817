package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ethics-case-api/internal/handler"
	"github.com/noah-isme/ethics-case-api/internal/middleware"
	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/service"
	"github.com/noah-isme/ethics-case-api/pkg/config"
)

type routeDeps struct {
	identity *service.IdentityService
	metrics  *service.MetricsService
	workflow *handler.WorkflowHandler
	health   *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix, middleware.JWT(deps.identity))

	director := middleware.RequireRoles(models.RoleDirector)
	analyst := middleware.RequireRoles(models.RoleAnalyst)

	cases := api.Group("/cases")
	cases.GET("", middleware.RequireRoles(models.RoleDirector, models.RoleAdmin), deps.workflow.List)
	cases.GET("/:id", deps.workflow.Get)
	cases.POST("/:id/assign", director, deps.workflow.Assign)
	cases.POST("/:id/report", analyst, deps.workflow.Report)
	cases.POST("/:id/draft", analyst, deps.workflow.Draft)
	cases.POST("/:id/review", director, deps.workflow.Review)
	cases.POST("/:id/archive", director, deps.workflow.Archive)
	cases.PUT("/:id/visibility", director, deps.workflow.Visibility)
	cases.GET("/:id/history", middleware.RequireRoles(models.RoleDirector, models.RoleAdmin, models.RoleAnalyst), deps.workflow.History)
	cases.GET("/:id/history/export", middleware.RequireRoles(models.RoleDirector, models.RoleAdmin), deps.workflow.ExportHistory)
}
