package handlers

import (
	"net/http"

	"case_flow_app_go/db"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

func communicationService(c echo.Context) (*services.CommunicationService, error) {
	p, err := getProviders(c)
	if err != nil {
		return nil, err
	}
	return services.NewCommunicationService(db.DB, p.Mailer, p.Caller), nil
}

// SendCaseEmailHandler sends an email to the client of a case
func SendCaseEmailHandler(c echo.Context) error {
	var input services.SendEmailInput
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to send email", err)
	}

	svc, err := communicationService(c)
	if err != nil {
		return respondError(c, "Failed to send email", err)
	}

	result, err := svc.SendEmail(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return respondError(c, "Failed to send email", err)
	}
	return c.JSON(http.StatusOK, result)
}

// MakeCaseCallHandler places an automated call to the client of a case
func MakeCaseCallHandler(c echo.Context) error {
	var input services.CallInput
	if err := bindJSON(c, &input); err != nil {
		return respondError(c, "Failed to initiate call", err)
	}

	svc, err := communicationService(c)
	if err != nil {
		return respondError(c, "Failed to initiate call", err)
	}

	result, err := svc.MakeCall(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return respondError(c, "Failed to initiate call", err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListCommunicationsHandler returns the merged email and SMS feed
func ListCommunicationsHandler(c echo.Context) error {
	svc, err := communicationService(c)
	if err != nil {
		return respondError(c, "Failed to fetch communications", err)
	}

	feed, err := svc.ListCommunications(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to fetch communications", err)
	}
	return c.JSON(http.StatusOK, feed)
}
