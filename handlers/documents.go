package handlers

import (
	"errors"
	"net/http"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

// RateConfirmationRequest picks the carrier and, optionally, where to send the PDF
type RateConfirmationRequest struct {
	CarrierLeadID string `json:"carrierLeadId" validate:"required"`
	EmailTo       string `json:"emailTo" validate:"omitempty,email"`
	SendEmail     bool   `json:"sendEmail"`
}

// RateConfirmationHandler generates the load's rate confirmation PDF and, when
// asked, emails it to the carrier
func RateConfirmationHandler(c echo.Context) error {
	if Documents == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Document generation is not available")
	}

	var req RateConfirmationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	loadID := c.Param("id")

	if !req.SendEmail && req.EmailTo == "" {
		result, err := Documents.GenerateRateConfirmationPDF(ctx, loadID, req.CarrierLeadID)
		if err != nil {
			return serviceError(c, err, "Failed to generate rate confirmation")
		}
		return c.JSON(http.StatusCreated, result)
	}

	result, err := Documents.EmailRateConfirmation(ctx, loadID, req.CarrierLeadID, req.EmailTo)
	if err != nil {
		if result != nil && errors.Is(err, services.ErrNoRecipient) {
			// The PDF exists; report it alongside the missing address
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    err.Error(),
				"document": result.Document,
			})
		}
		return serviceError(c, err, "Failed to send rate confirmation")
	}
	return c.JSON(http.StatusCreated, result)
}

// ListLoadDocumentsHandler lists the files generated for a load
func ListLoadDocumentsHandler(c echo.Context) error {
	if _, err := services.GetLoad(db.DB, c.Param("id")); err != nil {
		return serviceError(c, err, "Failed to fetch load")
	}
	docs, err := services.ListGeneratedDocuments(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(c, err, "Failed to fetch documents")
	}
	return c.JSON(http.StatusOK, docs)
}
