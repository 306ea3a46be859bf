package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// DashboardStatsHandler returns the dashboard counters
func DashboardStatsHandler(c echo.Context) error {
	stats, err := services.NewDashboardService(db.DB).Stats(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to fetch dashboard stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RecentCasesHandler returns the most recently active cases
func RecentCasesHandler(c echo.Context) error {
	cases, err := services.NewDashboardService(db.DB).RecentCases(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to fetch recent cases", err)
	}
	return c.JSON(http.StatusOK, cases)
}

// PendingActionsHandler returns the newest agent actions
func PendingActionsHandler(c echo.Context) error {
	actions, err := services.NewDashboardService(db.DB).PendingActions(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to fetch pending actions", err)
	}
	return c.JSON(http.StatusOK, actions)
}
