package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListCasesHandler returns cases by latest activity, optionally filtered by ?status=
func ListCasesHandler(c echo.Context) error {
	cases, err := services.NewCaseService(db.DB).ListCases(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, "Failed to fetch cases", err)
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns one case with its communications, files and actions
func GetCaseHandler(c echo.Context) error {
	lawCase, err := services.NewCaseService(db.DB).GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to fetch case", err)
	}
	return c.JSON(http.StatusOK, lawCase)
}

// UpdateCaseHandler changes the status of a case
func UpdateCaseHandler(c echo.Context) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to update case", err)
	}

	lawCase, err := services.NewCaseService(db.DB).UpdateCaseStatus(c.Request().Context(), c.Param("id"), input.Status)
	if err != nil {
		return respondError(c, "Failed to update case", err)
	}
	return c.JSON(http.StatusOK, lawCase)
}
