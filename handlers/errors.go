package handlers

import (
	"errors"
	"net/http"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/telephony"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	var apiErr *telephony.APIError
	switch {
	case errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrOpportunityNotFound),
		errors.Is(err, services.ErrLoadNotFound),
		errors.Is(err, services.ErrTripNotFound),
		errors.Is(err, services.ErrAssetNotFound),
		errors.Is(err, services.ErrNoLeadsInQueue):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrReferenceNotFound),
		errors.Is(err, services.ErrEmptySourceLabel),
		errors.Is(err, services.ErrEmptyNote),
		errors.Is(err, services.ErrNoRecipient),
		errors.Is(err, services.ErrUnsupportedFile),
		errors.Is(err, services.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, telephony.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, telephony.ErrReportTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, telephony.ErrReportCreate),
		errors.Is(err, telephony.ErrReportFailed),
		errors.Is(err, telephony.ErrReportDownload),
		errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// serviceError turns a service error into an HTTP error. Internal errors are
// logged and reported with the generic message.
func serviceError(c echo.Context, err error, message string) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.L().Error(message,
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return echo.NewHTTPError(status, message)
	}
	return echo.NewHTTPError(status, err.Error())
}
