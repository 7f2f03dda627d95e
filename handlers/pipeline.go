package handlers

import (
	"net/http"

	"dispatch_crm_go/db"
	"dispatch_crm_go/models"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

// PipelineResponse is the board with its aggregates
type PipelineResponse struct {
	Columns []services.BoardColumn   `json:"columns"`
	Summary services.PipelineSummary `json:"summary"`
}

// StageRequest moves a card to another column
type StageRequest struct {
	Stage string `json:"stage" validate:"required,salesstage"`
}

// GetPipelineHandler returns the board grouped by stage
func GetPipelineHandler(c echo.Context) error {
	board, err := services.LoadBoard(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch pipeline")
	}
	return c.JSON(http.StatusOK, PipelineResponse{
		Columns: board.Columns(),
		Summary: services.SummarizePipeline(board.Opportunities),
	})
}

// CreateOpportunityHandler opens a deal
func CreateOpportunityHandler(c echo.Context) error {
	var input services.OpportunityInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}

	opp, err := services.CreateOpportunity(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create opportunity")
	}
	return c.JSON(http.StatusCreated, opp)
}

// UpdateOpportunityHandler patches a deal
func UpdateOpportunityHandler(c echo.Context) error {
	var patch services.OpportunityPatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}

	opp, err := services.UpdateOpportunity(db.DB, c.Param("id"), patch)
	if err != nil {
		return serviceError(c, err, "Failed to update opportunity")
	}
	return c.JSON(http.StatusOK, opp)
}

// UpdateOpportunityStageHandler persists a drag between columns. A rejected
// move returns the error with the current board so the client can redraw.
func UpdateOpportunityStageHandler(c echo.Context) error {
	var req StageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := services.UpdateOpportunityStage(db.DB, c.Param("id"), models.SalesStage(req.Stage))
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			return serviceError(c, err, "Failed to move opportunity")
		}
		board, loadErr := services.LoadBoard(db.DB)
		if loadErr != nil {
			return serviceError(c, err, "Failed to move opportunity")
		}
		return c.JSON(status, map[string]interface{}{
			"error":   err.Error(),
			"columns": board.Columns(),
		})
	}

	opp, err := services.GetOpportunity(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(c, err, "Failed to fetch opportunity")
	}
	return c.JSON(http.StatusOK, opp)
}

// DeleteOpportunityHandler removes a deal
func DeleteOpportunityHandler(c echo.Context) error {
	if err := services.DeleteOpportunity(db.DB, c.Param("id")); err != nil {
		return serviceError(c, err, "Failed to delete opportunity")
	}
	return c.NoContent(http.StatusNoContent)
}
