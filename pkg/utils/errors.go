package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// ErrorKind names a class of failure that callers branch on
type ErrorKind string

const (
	KindConfiguration        ErrorKind = "configuration"
	KindJobSearchFailed      ErrorKind = "job-search-failed"
	KindPlanGenerationFailed ErrorKind = "plan-generation-failed"
)

// ConfigurationError is returned when credentials or settings required by an
// external service are missing. It is raised before any network attempt.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("%s (missing %s)", e.Message, e.Setting)
	}
	return e.Message
}

// NewConfigurationError creates a configuration error for the named setting
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: message}
}

// UpstreamError wraps a failed call to an external service. StatusCode is nil
// when the transport failed before a response was received.
type UpstreamError struct {
	Kind       ErrorKind
	Service    string
	Message    string
	StatusCode *int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.StatusCode != nil {
		msg = fmt.Sprintf("%s (status %d)", msg, *e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError builds an UpstreamError. Pass status 0 when no response was received.
func NewUpstreamError(kind ErrorKind, service, message string, status int, err error) *UpstreamError {
	ue := &UpstreamError{
		Kind:    kind,
		Service: service,
		Message: message,
		Err:     err,
	}
	if status > 0 {
		ue.StatusCode = &status
	}
	return ue
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsUpstreamKind reports whether err is or wraps an UpstreamError of the given kind
func IsUpstreamKind(err error, kind ErrorKind) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Kind == kind
}

// ToCustomError maps domain errors onto HTTP-facing errors
func ToCustomError(err error) *CustomError {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return &CustomError{
			Code:    http.StatusServiceUnavailable,
			Message: "Service not configured",
			Detail:  cfgErr.Error(),
		}
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return &CustomError{
			Code:    http.StatusBadGateway,
			Message: "Upstream request failed",
			Detail:  upErr.Error(),
		}
	}

	return NewInternalServerError(err.Error())
}
