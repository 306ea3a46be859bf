package handlers

import (
	"errors"
	"fmt"

	"case_flow_app_go/logging"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError renders err as {error, details?} with the status from the
// service error taxonomy. label is the user-facing message for 5xx errors.
func respondError(c echo.Context, label string, err error) error {
	status := services.HTTPStatus(err)

	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		timeoutErr    *services.AnalysisTimeoutError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(status, map[string]string{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		return c.JSON(status, map[string]string{"error": notFoundErr.Error()})
	case errors.As(err, &timeoutErr):
		return c.JSON(status, map[string]string{
			"error": fmt.Sprintf("Analysis timed out after %s. Please try with fewer files or a simpler request.", timeoutErr.Timeout),
		})
	}

	logging.L().Error(label,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	return c.JSON(status, map[string]string{"error": label, "details": err.Error()})
}

// bindJSON decodes the request body and reports malformed input as a validation error
func bindJSON(c echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dest); err != nil {
		return services.NewValidationError("Invalid request body")
	}
	return nil
}
