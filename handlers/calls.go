package handlers

import (
	"net/http"
	"strconv"

	"dispatch_crm_go/db"
	"dispatch_crm_go/logger"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/telephony"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxCallReportSize caps uploaded carrier exports
const maxCallReportSize = 20 << 20

// DialResponse holds the ways a number can be dialed
type DialResponse struct {
	Number       string `json:"number"`
	E164         string `json:"e164"`
	TelURI       string `json:"telUri"`
	DeskPhoneURL string `json:"deskPhoneUrl,omitempty"`
}

// CallImportResponse carries the counts committed before an import stopped
type CallImportResponse struct {
	*services.SyncResult
	Error string `json:"error"`
}

// SoftphoneResponse is the browser softphone's configuration. The password is never returned.
type SoftphoneResponse struct {
	Configured  bool   `json:"configured"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName"`
	AutoRecord  bool   `json:"autoRecord"`
	Error       string `json:"error,omitempty"`
}

// ListCallsHandler returns recent calls, newest first. ?limit= overrides the default.
func ListCallsHandler(c echo.Context) error {
	limit := services.DefaultCallHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive number")
		}
		limit = n
	}

	logs, err := services.ListCallHistory(db.DB, limit)
	if err != nil {
		return serviceError(c, err, "Failed to fetch call history")
	}
	return c.JSON(http.StatusOK, logs)
}

// LogCallHandler records a call made from the desk phone or dialer
func LogCallHandler(c echo.Context) error {
	var input services.CallLogInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}

	entry, err := services.LogCall(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to log call")
	}
	return c.JSON(http.StatusCreated, entry)
}

// SyncCallsHandler pulls the carrier's call report for yesterday and today
func SyncCallsHandler(c echo.Context) error {
	if CallSync == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, telephony.ErrNotConfigured.Error())
	}

	result, err := CallSync.Sync(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "Call sync failed")
	}
	return c.JSON(http.StatusOK, result)
}

// ImportCallReportHandler applies a call report exported by hand from the carrier portal
func ImportCallReportHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A call report file is required")
	}
	data, err := services.ReadSpreadsheetUpload(file, maxCallReportSize)
	if err != nil {
		return serviceError(c, err, "Failed to read uploaded file")
	}

	result, err := services.ImportCDRFile(db.DB, data, file.Filename)
	if err != nil {
		if result == nil {
			return serviceError(c, err, "Failed to import call report")
		}
		// Rows before the failure are committed; report them with the error
		status := errorStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "Call report import stopped partway"
			logger.L().Error(message, zap.String("file", file.Filename), zap.Int("inserted", result.Inserted), zap.Error(err))
		}
		return c.JSON(status, CallImportResponse{SyncResult: result, Error: message})
	}
	return c.JSON(http.StatusOK, result)
}

// DialHandler returns tel: and desk phone links for ?number=
func DialHandler(c echo.Context) error {
	number := c.QueryParam("number")
	e164 := telephony.E164(number)
	if e164 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "number is required")
	}

	return c.JSON(http.StatusOK, DialResponse{
		Number:       number,
		E164:         e164,
		TelURI:       telephony.TelURI(number),
		DeskPhoneURL: telephony.DeskPhoneDialURL(getConfig(c).DeskPhoneHost, number),
	})
}

// SoftphoneHandler reports whether SIP credentials are set up
func SoftphoneHandler(c echo.Context) error {
	sip := getConfig(c).SIP()
	resp := SoftphoneResponse{
		Configured:  true,
		Username:    sip.Username,
		DisplayName: sip.DisplayName,
		AutoRecord:  sip.AutoRecord,
	}
	if err := sip.Validate(); err != nil {
		resp.Configured = false
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
