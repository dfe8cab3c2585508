package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/background"
	"wikijobs/pkg/models"
)

// TaskStatusHandler returns the status of one background task
func TaskStatusHandler(tasks background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := tasks.GetTaskResult(c.Request().Context(), c.Param("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(http.StatusOK, toTaskStatusResponse(result))
	}
}

// ListTasksHandler lists the retained background tasks
func ListTasksHandler(tasks background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := tasks.ListTasks(c.Request().Context())
		if err != nil {
			return domainError(c, err)
		}

		resp := models.AsyncTaskListResponse{
			Success: true,
			Tasks:   make([]models.AsyncTaskStatusResponse, 0, len(results)),
			Count:   len(results),
		}
		for _, r := range results {
			resp.Tasks = append(resp.Tasks, toTaskStatusResponse(r))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func toTaskStatusResponse(r *background.TaskResult) models.AsyncTaskStatusResponse {
	return models.AsyncTaskStatusResponse{
		ProcessID:      r.ProcessID,
		Status:         models.AsyncStatus(r.Status),
		Data:           r.Data,
		Error:          r.Error,
		CreatedAt:      r.CreatedAt,
		CompletedAt:    r.CompletedAt,
		ProcessingTime: r.ProcessingTime,
		Metadata:       r.Metadata,
	}
}
