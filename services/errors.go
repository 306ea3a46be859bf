package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports bad or missing input. Nothing has been written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown case or child resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// UpstreamError reports a failed call to an external provider
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned %d", e.Provider, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return e.Provider + " request failed"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AnalysisTimeoutError reports that the orchestrator did not answer in time
type AnalysisTimeoutError struct {
	Timeout string
}

func (e *AnalysisTimeoutError) Error() string {
	return fmt.Sprintf("analysis timed out after %s", e.Timeout)
}

// PersistenceError reports a storage failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// HTTPStatus maps an error from this package to the response status code
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		timeoutErr    *AnalysisTimeoutError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		// UpstreamError, PersistenceError and anything unexpected
		return http.StatusInternalServerError
	}
}
