package handlers

import (
	"net/http"
	"net/url"

	"dispatch_crm_go/db"
	"dispatch_crm_go/models"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

// LeadStatusRequest is the body of a status update
type LeadStatusRequest struct {
	Status string `json:"status" validate:"required,leadstatus"`
	Note   string `json:"note" validate:"max=4000"`
}

// LeadNoteRequest is the body of a new note
type LeadNoteRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// DeleteLeadsRequest lists the leads to delete
type DeleteLeadsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// ListLeadsHandler returns every lead with its notes
func ListLeadsHandler(c echo.Context) error {
	leads, err := services.ListLeads(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch leads")
	}
	return c.JSON(http.StatusOK, leads)
}

// GetLeadHandler returns one lead
func GetLeadHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(c, err, "Failed to fetch lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// CreateLeadHandler adds a lead by hand
func CreateLeadHandler(c echo.Context) error {
	var input services.LeadInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}

	lead, err := services.CreateLead(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create lead")
	}
	return c.JSON(http.StatusCreated, lead)
}

// UpdateLeadHandler patches the fields present in the body
func UpdateLeadHandler(c echo.Context) error {
	var patch services.LeadPatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}

	lead, err := services.UpdateLeadDetails(db.DB, c.Param("id"), patch)
	if err != nil {
		return serviceError(c, err, "Failed to update lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatusHandler records a call disposition
func UpdateLeadStatusHandler(c echo.Context) error {
	var req LeadStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lead, err := services.UpdateLeadStatus(db.DB, c.Param("id"), models.LeadStatus(req.Status), req.Note)
	if err != nil {
		return serviceError(c, err, "Failed to update lead status")
	}
	return c.JSON(http.StatusOK, lead)
}

// AddLeadNoteHandler appends a note
func AddLeadNoteHandler(c echo.Context) error {
	var req LeadNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := services.AddLeadNote(db.DB, c.Param("id"), req.Content)
	if err != nil {
		return serviceError(c, err, "Failed to add note")
	}
	return c.JSON(http.StatusCreated, note)
}

// DeleteLeadHandler removes one lead
func DeleteLeadHandler(c echo.Context) error {
	if err := services.DeleteLead(db.DB, c.Param("id")); err != nil {
		return serviceError(c, err, "Failed to delete lead")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteLeadsHandler removes the listed leads
func DeleteLeadsHandler(c echo.Context) error {
	var req DeleteLeadsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := services.DeleteLeads(db.DB, req.IDs)
	if err != nil {
		return serviceError(c, err, "Failed to delete leads")
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": n})
}

// DeleteLeadSourceHandler removes every lead of one import batch
func DeleteLeadSourceHandler(c echo.Context) error {
	source, err := url.PathUnescape(c.Param("source"))
	if err != nil || source == "" {
		return echo.NewHTTPError(http.StatusBadRequest, services.ErrEmptySourceLabel.Error())
	}

	n, err := services.DeleteLeadsBySource(db.DB, source)
	if err != nil {
		return serviceError(c, err, "Failed to delete leads")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"source": source, "deleted": n})
}

// NextLeadHandler returns the next lead to call
func NextLeadHandler(c echo.Context) error {
	lead, err := services.GetNextLead(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch next lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// LeadSourcesHandler lists import batches with their sizes
func LeadSourcesHandler(c echo.Context) error {
	sources, err := services.ListLeadSources(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch lead sources")
	}
	return c.JSON(http.StatusOK, sources)
}
