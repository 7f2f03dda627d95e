package handlers

import (
	"net/http"
	"time"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

// StatsHandler returns the dashboard figures
func StatsHandler(c echo.Context) error {
	stats, err := services.GetDashboardStats(db.DB, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}
