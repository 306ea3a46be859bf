package handlers

import (
	"errors"

	"case_flow_app_go/config"
	"case_flow_app_go/logging"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by the server middleware
const (
	ConfigKey    = "config"
	ProvidersKey = "providers"
)

var errProvidersMissing = errors.New("outbound providers not configured")

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get(ConfigKey).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// getProviders returns the adapters installed by the server middleware
func getProviders(c echo.Context) (*services.Providers, error) {
	p, ok := c.Get(ProvidersKey).(*services.Providers)
	if !ok || p == nil {
		logging.L().Error("Providers missing from request context", zap.String("path", c.Request().URL.Path))
		return nil, errProvidersMissing
	}
	return p, nil
}
