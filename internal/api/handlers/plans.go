package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/middleware"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/internal/plan"
	"wikijobs/internal/session"
	"wikijobs/pkg/models"
)

// SelectJobHandler selects a job from the current view and starts plan generation
func SelectJobHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.LogWithRequestID(middleware.RequestID(c))

		var req models.SelectJobRequest
		if ok, err := bindAndValidate(c, validate, &req); !ok {
			return err
		}

		sess, err := svc.SelectJob(c.Request().Context(), c.Param("id"), req.Index)
		if err != nil {
			logger.Warn("Job selection failed", map[string]interface{}{
				types.FieldSessionID: c.Param("id"),
				types.FieldError:     err.Error(),
			})
			return domainError(c, err)
		}

		if !sess.PlanPending() {
			// The plan was settled without a background task
			return c.JSON(http.StatusOK, planResponse(sess))
		}

		return c.JSON(http.StatusAccepted, models.CreateAsyncPlanResponse(sess.PlanProcessID, sess.ID))
	}
}

// GetPlanHandler returns the plan for the selected job, 202 while it is pending
func GetPlanHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp, err := svc.GetPlan(c.Request().Context(), c.Param("id"))
		if err != nil {
			return domainError(c, err)
		}
		if resp.Pending {
			return c.JSON(http.StatusAccepted, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// ParsePlanHandler runs raw generated text through the plan parser
func ParsePlanHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.ParsePlanRequest
		if ok, err := bindAndValidate(c, validate, &req); !ok {
			return err
		}
		return c.JSON(http.StatusOK, plan.Parse(req.Text))
	}
}

func planResponse(sess *session.Session) *models.PlanResponse {
	return &models.PlanResponse{
		SessionID: sess.ID,
		Job:       sess.SelectedJob,
		Plan:      sess.Plan,
		Source:    sess.PlanSource,
		Pending:   sess.PlanPending(),
		ProcessID: sess.PlanProcessID,
		Warning:   sess.PlanWarning,
	}
}
