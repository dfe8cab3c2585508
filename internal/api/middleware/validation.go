package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wikijobs/pkg/models"
	"wikijobs/pkg/utils"
)

// RequestIDKey is the echo.Context key holding the request ID
const RequestIDKey = "request_id"

// MaxBodyBytes caps request bodies
const MaxBodyBytes = 1024 * 1024

// RequestValidation assigns a request ID and rejects oversized bodies
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if c.Request().ContentLength > MaxBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error:     "request_too_large",
					Message:   "Request body too large",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			return next(c)
		}
	}
}

// RequestID returns the request ID set by RequestValidation, or a fresh one
func RequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
