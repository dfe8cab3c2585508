package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/filters"
	"wikijobs/internal/session"
)

// PresetsHandler lists the predefined filter combinations
func PresetsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"presets": filters.Presets(),
	})
}

// ApplyPresetHandler replaces the session's filters with a preset
func ApplyPresetHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := svc.ApplyPreset(c.Request().Context(), c.Param("id"), c.Param("preset")); err != nil {
			return domainError(c, err)
		}
		return respondWithJobs(c, svc)
	}
}
