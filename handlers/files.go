package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// DownloadFileHandler redirects to a download link for a case file
func DownloadFileHandler(c echo.Context) error {
	providers, err := getProviders(c)
	if err != nil {
		return respondError(c, "Failed to download file", err)
	}

	svc := services.NewFileService(db.DB, providers.Signer, getConfig(c).FileURLExpiry)
	url, err := svc.DownloadURL(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, "Failed to download file", err)
	}
	return c.Redirect(http.StatusFound, url)
}
