package admin

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/olive-green/api-scheduler/internal/config"
	"github.com/olive-green/api-scheduler/internal/health"
	"github.com/olive-green/api-scheduler/internal/metrics"
	"github.com/olive-green/api-scheduler/internal/middleware"
)

// SetupRoutes mounts the admin surface: health probes, Prometheus metrics,
// Swagger docs, and the targets/schedules/runs/metrics CRUD routes.
func SetupRoutes(router *gin.Engine, h *Handler, healthHandler *health.Handler, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.SecurityHeaders(middleware.APISecurityHeadersConfig()))
	router.Use(metrics.GinMiddleware())

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/health/live", healthHandler.GetLiveness)
	router.GET("/health/ready", healthHandler.GetReadiness)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg))
	{
		targets := api.Group("/targets")
		{
			targets.POST("", h.CreateTarget)
			targets.GET("", h.ListTargets)
			targets.GET("/:id", h.GetTarget)
			targets.PUT("/:id", h.UpdateTarget)
			targets.DELETE("/:id", h.DeleteTarget)
		}

		schedules := api.Group("/schedules")
		{
			schedules.POST("", h.CreateSchedule)
			schedules.GET("", h.ListSchedules)
			schedules.GET("/:id", h.GetSchedule)
			schedules.PUT("/:id", h.UpdateSchedule)
			schedules.DELETE("/:id", h.DeleteSchedule)
			schedules.POST("/:id/pause", h.PauseSchedule)
			schedules.POST("/:id/resume", h.ResumeSchedule)
		}

		runs := api.Group("/runs")
		{
			runs.GET("", h.ListRuns)
			runs.GET("/:id", h.GetRun)
		}

		metricsRoutes := api.Group("/metrics")
		{
			metricsRoutes.GET("/system", h.GetSystemMetrics)
			metricsRoutes.GET("/schedules", h.GetScheduleMetrics)
		}
	}
}
