package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/middleware"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/models"
)

// Version is reported by the health endpoints
var Version = "1.0.0"

var startTime = time.Now()

// ProviderStatus reports on the text generation provider
type ProviderStatus interface {
	IsHealthy() bool
	GetProviderName() string
}

// TaskStatus reports on the background task manager
type TaskStatus interface {
	IsHealthy() bool
}

// SessionCounter reports the number of live sessions
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{
		types.FieldRequestID: middleware.RequestID(c),
	})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports ready once the task manager runs. A missing or
// unhealthy generator only degrades plans to the fallback, so it never
// fails readiness.
func ReadinessHandler(llm ProviderStatus, tasks TaskStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api":   "ok",
			"tasks": "ok",
			"llm":   "ok",
		}
		status, code := "ready", http.StatusOK

		if !tasks.IsHealthy() {
			checks["tasks"] = "unavailable"
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		if !llm.IsHealthy() {
			checks["llm"] = "degraded"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status
func StatusHandler(llm ProviderStatus, tasks TaskStatus, sessions SessionCounter) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api":          "operational",
			"llm_provider": llm.GetProviderName(),
			"llm":          "operational",
			"tasks":        "operational",
		}
		if !llm.IsHealthy() {
			checks["llm"] = "degraded"
		}
		if !tasks.IsHealthy() {
			checks["tasks"] = "unavailable"
		}

		count, err := sessions.Count(c.Request().Context())
		if err != nil {
			checks["sessions"] = "unavailable"
		} else {
			checks["sessions"] = strconv.Itoa(count)
		}

		manager := logging.GetGlobalManager()
		for name, health := range manager.Health() {
			checks["log_"+name] = health
		}
		checks["recent_errors"] = strconv.Itoa(len(manager.Recent(types.ErrorLevel)))

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}
