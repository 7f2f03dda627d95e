package handlers

import (
	"dispatch_crm_go/config"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/jobs"

	"github.com/labstack/echo/v4"
)

var (
	// CallSync pulls the carrier call report; nil when the provider is not configured
	CallSync jobs.CallSyncer
	// Documents renders, stores and emails rate confirmations
	Documents *services.DocumentService
)

// getConfig returns the config the server stored on the context
func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok && cfg != nil {
		return cfg
	}
	return &config.Config{}
}
