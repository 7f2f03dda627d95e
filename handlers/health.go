package handlers

import (
	"net/http"

	"dispatch_crm_go/db"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the database answers
func HealthHandler(c echo.Context) error {
	if db.DB == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	sqlDB, err := db.DB.DB()
	if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
