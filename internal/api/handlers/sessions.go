package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/middleware"
	"wikijobs/internal/api/validation"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/internal/session"
	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

var validate = validation.New()

// bindAndValidate decodes the body into req and validates it, writing the
// error response itself. ok is false when the handler should return.
func bindAndValidate(c echo.Context, v *validator.Validate, req interface{}) (ok bool, err error) {
	logger := logging.LogWithRequestID(middleware.RequestID(c))

	if err := c.Bind(req); err != nil {
		logger.Warn("Failed to parse request body", map[string]interface{}{
			types.FieldError: err.Error(),
		})
		return false, errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := v.Struct(req); err != nil {
		msg := validation.Describe(err)
		logger.Warn("Request validation failed", map[string]interface{}{
			types.FieldError: msg,
		})
		return false, errorJSON(c, http.StatusBadRequest, "validation_failed", msg)
	}
	return true, nil
}

// CreateSessionHandler runs the job search for a submitted profile
func CreateSessionHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var profile models.UserProfile
		if ok, err := bindAndValidate(c, validate, &profile); !ok {
			return err
		}
		profile.Preferences.WorkType = models.WorkType(strings.ToLower(string(profile.Preferences.WorkType)))

		sess, err := svc.CreateSession(c.Request().Context(), profile)
		if err != nil {
			logger.Error("Failed to create session", map[string]interface{}{
				types.FieldError: err.Error(),
			})
			return domainError(c, err)
		}

		return c.JSON(http.StatusCreated, models.CreateSessionResponse{
			SessionID: sess.ID,
			Jobs:      sess.Jobs,
			Warning:   sess.Warning,
			RequestID: requestID,
		})
	}
}

// DeleteSessionHandler ends a session
func DeleteSessionHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
			return domainError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// ListJobsHandler returns the session's jobs filtered and sorted. Query
// parameters override the stored view for this request only.
func ListJobsHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		view, err := ParseView(c)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_query", err.Error())
		}

		resp, err := svc.ListJobs(c.Request().Context(), c.Param("id"), view)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// UpdateFiltersHandler stores the session's filters
func UpdateFiltersHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var f models.JobFilters
		if ok, err := bindAndValidate(c, validate, &f); !ok {
			return err
		}
		normalizeFilters(&f)

		if _, err := svc.UpdateFilters(c.Request().Context(), c.Param("id"), f); err != nil {
			return domainError(c, err)
		}
		return respondWithJobs(c, svc)
	}
}

// UpdateSortRequest carries a sort configuration and optional location
type UpdateSortRequest struct {
	models.SortConfig
	Location string `json:"location"`
}

// UpdateSortHandler stores the session's sort configuration
func UpdateSortHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req UpdateSortRequest
		if ok, err := bindAndValidate(c, validate, &req); !ok {
			return err
		}

		if _, err := svc.UpdateSort(c.Request().Context(), c.Param("id"), req.SortConfig, strings.TrimSpace(req.Location)); err != nil {
			return domainError(c, err)
		}
		return respondWithJobs(c, svc)
	}
}

// respondWithJobs writes the session's current job view
func respondWithJobs(c echo.Context, svc *session.Service) error {
	resp, err := svc.ListJobs(c.Request().Context(), c.Param("id"), session.View{})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// filterParams are the query parameters that make up a filter override
var filterParams = []string{"returnToWork", "flexibleHours", "mentorship", "salaryMin", "salaryMax", "workTypes", "categories"}

// ParseView reads view overrides from the query string. Any filter parameter
// replaces the stored filters as a whole; absent ones are inactive.
func ParseView(c echo.Context) (session.View, error) {
	var view session.View
	q := c.QueryParams()

	hasFilters := false
	for _, p := range filterParams {
		if q.Has(p) {
			hasFilters = true
			break
		}
	}

	if hasFilters {
		f := models.JobFilters{
			WorkTypes:  utils.SplitCSV(q.Get("workTypes")),
			Categories: utils.SplitCSV(q.Get("categories")),
		}
		var err error
		if f.ReturnToWork, err = queryBool(q.Get("returnToWork")); err != nil {
			return view, fmt.Errorf("returnToWork: %w", err)
		}
		if f.FlexibleHours, err = queryBool(q.Get("flexibleHours")); err != nil {
			return view, fmt.Errorf("flexibleHours: %w", err)
		}
		if f.Mentorship, err = queryBool(q.Get("mentorship")); err != nil {
			return view, fmt.Errorf("mentorship: %w", err)
		}
		if f.SalaryRange.Min, err = queryInt(q.Get("salaryMin")); err != nil {
			return view, fmt.Errorf("salaryMin: %w", err)
		}
		if f.SalaryRange.Max, err = queryInt(q.Get("salaryMax")); err != nil {
			return view, fmt.Errorf("salaryMax: %w", err)
		}
		if err := validate.Struct(&f); err != nil {
			return view, fmt.Errorf("%s", validation.Describe(err))
		}
		normalizeFilters(&f)
		view.Filters = &f
	}

	if field := q.Get("sort"); field != "" {
		cfg := models.SortConfig{
			Field:     models.SortField(field),
			Direction: models.SortDirection(utils.GetStringOrDefault(q.Get("direction"), string(models.SortDesc))),
		}
		if err := validate.Struct(&cfg); err != nil {
			return view, fmt.Errorf("%s", validation.Describe(err))
		}
		view.Sort = &cfg
	}

	if q.Has("location") {
		location := strings.TrimSpace(q.Get("location"))
		view.UserLocation = &location
	}

	return view, nil
}

// normalizeFilters replaces nil lists with empty ones
func normalizeFilters(f *models.JobFilters) {
	if f.WorkTypes == nil {
		f.WorkTypes = []string{}
	}
	if f.Categories == nil {
		f.Categories = []string{}
	}
}

func queryBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func queryInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
