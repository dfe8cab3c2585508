package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"wikijobs/internal/api/handlers"
	"wikijobs/internal/api/middleware"
	"wikijobs/internal/background"
	"wikijobs/internal/config"
	"wikijobs/internal/session"
)

// Dependencies are the services the routes call into
type Dependencies struct {
	Sessions *session.Service
	Tasks    background.TaskManager
	LLM      handlers.ProviderStatus
	// Storage is nil when export sharing is not configured
	Storage handlers.ExportUploader
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.Server.AllowedOrigins))
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.WriteTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.LLM, deps.Tasks))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(deps.LLM, deps.Tasks, deps.Sessions))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSessionHandler(deps.Sessions))
			sessions.DELETE("/:id", handlers.DeleteSessionHandler(deps.Sessions))
			sessions.GET("/:id/jobs", handlers.ListJobsHandler(deps.Sessions))
			sessions.GET("/:id/jobs/export", handlers.ExportJobsHandler(deps.Sessions))
			sessions.POST("/:id/jobs/export/share", handlers.ShareExportHandler(deps.Sessions, deps.Storage))
			sessions.PUT("/:id/filters", handlers.UpdateFiltersHandler(deps.Sessions))
			sessions.POST("/:id/filters/presets/:preset", handlers.ApplyPresetHandler(deps.Sessions))
			sessions.PUT("/:id/sort", handlers.UpdateSortHandler(deps.Sessions))
			sessions.POST("/:id/select", handlers.SelectJobHandler(deps.Sessions))
			sessions.GET("/:id/plan", handlers.GetPlanHandler(deps.Sessions))
		}

		v1.GET("/filters/presets", handlers.PresetsHandler)

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasksHandler(deps.Tasks))
			tasks.GET("/:id", handlers.TaskStatusHandler(deps.Tasks))
		}

		v1.POST("/plans/parse", handlers.ParsePlanHandler())
		v1.POST("/match/explain", handlers.ExplainMatchHandler(deps.Sessions))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "WikiJobs Matching Service",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}
