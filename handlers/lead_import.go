package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportLeadsHandler imports a CSV or XLSX upload tagged with the "source" form field
func ImportLeadsHandler(c echo.Context) error {
	source := c.FormValue("source")
	if source == "" {
		return echo.NewHTTPError(http.StatusBadRequest, services.ErrEmptySourceLabel.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A spreadsheet file is required")
	}
	data, err := services.ReadSpreadsheetUpload(file, services.MaxSpreadsheetUpload)
	if err != nil {
		return serviceError(c, err, "Failed to read uploaded file")
	}

	result, err := services.ImportLeadsFromFile(db.DB, bytes.NewReader(data), file.Filename, source)
	if err != nil {
		return serviceError(c, err, "Failed to import leads")
	}
	return c.JSON(http.StatusCreated, result)
}

// ExportLeadsHandler downloads every lead as XLSX
func ExportLeadsHandler(c echo.Context) error {
	leads, err := services.ListLeads(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch leads")
	}

	buf, err := services.ExportLeadsXLSX(leads)
	if err != nil {
		return serviceError(c, err, "Failed to export leads")
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// LeadImportTemplateHandler downloads an empty import sheet with the expected headers
func LeadImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateLeadImportTemplate()
	if err != nil {
		return serviceError(c, err, "Failed to build template")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="lead-import-template.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
