package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/session"
	"wikijobs/pkg/models"
)

// ExplainMatchHandler returns the score breakdown of one posting against a profile
func ExplainMatchHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.ExplainMatchRequest
		if ok, err := bindAndValidate(c, validate, &req); !ok {
			return err
		}
		return c.JSON(http.StatusOK, svc.ExplainMatch(req.Job, req.Profile))
	}
}
