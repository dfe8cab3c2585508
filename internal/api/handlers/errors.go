package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/middleware"
	"wikijobs/internal/background"
	"wikijobs/internal/session"
	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

// errorJSON writes the standard error body
func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.RequestID(c),
		Timestamp: time.Now(),
	})
}

// domainError maps workflow errors onto HTTP responses
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return errorJSON(c, http.StatusNotFound, "session_not_found", "Session not found or expired")
	case errors.Is(err, session.ErrPresetNotFound):
		return errorJSON(c, http.StatusNotFound, "preset_not_found", "Filter preset not found")
	case errors.Is(err, session.ErrInvalidIndex):
		return errorJSON(c, http.StatusBadRequest, "invalid_index", "Job index is out of range")
	case errors.Is(err, session.ErrNoSelection):
		return errorJSON(c, http.StatusConflict, "no_selection", "Select a job before requesting a plan")
	case errors.Is(err, background.ErrTaskNotFound):
		return errorJSON(c, http.StatusNotFound, "task_not_found", "Task not found")
	case errors.Is(err, background.ErrQueueFull), errors.Is(err, background.ErrManagerStopped):
		return errorJSON(c, http.StatusServiceUnavailable, "task_submission_failed", err.Error())
	}

	custom := utils.ToCustomError(err)
	code := "internal_error"
	switch {
	case utils.IsConfigurationError(err):
		code = "not_configured"
	case utils.IsUpstreamKind(err, utils.KindJobSearchFailed):
		code = string(utils.KindJobSearchFailed)
	case utils.IsUpstreamKind(err, utils.KindPlanGenerationFailed):
		code = string(utils.KindPlanGenerationFailed)
	}
	return errorJSON(c, custom.Code, code, custom.Error())
}
