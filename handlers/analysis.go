package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// AnalyzeCaseHandler runs an orchestrator analysis for a case
func AnalyzeCaseHandler(c echo.Context) error {
	var input services.AnalyzeInput
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to analyze case", services.NewValidationError("userRequest and fileUrls array are required"))
	}

	providers, err := getProviders(c)
	if err != nil {
		return respondError(c, "Failed to analyze case", err)
	}

	svc := services.NewAnalysisService(db.DB, providers.Analyzer)
	outcome, err := svc.Analyze(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return respondError(c, "Failed to analyze case", err)
	}

	return c.JSON(http.StatusOK, outcome)
}

// ListCaseAnalysesHandler returns the analysis history of a case
func ListCaseAnalysesHandler(c echo.Context) error {
	svc := services.NewAnalysisService(db.DB, nil)
	analyses, err := svc.ListAnalyses(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to fetch analyses", err)
	}

	return c.JSON(http.StatusOK, analyses)
}
