package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListActionsHandler returns every agent action, newest first
func ListActionsHandler(c echo.Context) error {
	actions, err := services.NewActionService(db.DB).ListActions(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to fetch actions", err)
	}
	return c.JSON(http.StatusOK, actions)
}

// UpdateActionHandler approves or rejects an agent action
func UpdateActionHandler(c echo.Context) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to update action", err)
	}

	action, err := services.NewActionService(db.DB).UpdateActionStatus(c.Request().Context(), c.Param("id"), input.Status)
	if err != nil {
		return respondError(c, "Failed to update action", err)
	}
	return c.JSON(http.StatusOK, action)
}
