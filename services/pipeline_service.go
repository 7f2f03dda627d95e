package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpportunityInput holds the fields of a new deal
type OpportunityInput struct {
	Title             string  `json:"title" validate:"required,max=255"`
	CompanyName       string  `json:"companyName" validate:"max=255"`
	Value             float64 `json:"value"`
	Owner             string  `json:"owner" validate:"max=128"`
	NextAction        string  `json:"nextAction" validate:"max=512"`
	ExpectedCloseDate string  `json:"expectedCloseDate" validate:"max=32"`
	Probability       *int    `json:"probability"`
}

// OpportunityPatch is a partial update of a deal
type OpportunityPatch struct {
	Title             *string  `json:"title" validate:"omitempty,max=255"`
	CompanyName       *string  `json:"companyName" validate:"omitempty,max=255"`
	Value             *float64 `json:"value"`
	Stage             *string  `json:"stage" validate:"omitempty,salesstage"`
	Owner             *string  `json:"owner" validate:"omitempty,max=128"`
	NextAction        *string  `json:"nextAction" validate:"omitempty,max=512"`
	ExpectedCloseDate *string  `json:"expectedCloseDate" validate:"omitempty,max=32"`
	Probability       *int     `json:"probability"`
}

// Columns maps the present fields to their columns
func (p OpportunityPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.CompanyName != nil {
		cols["company_name"] = strings.TrimSpace(*p.CompanyName)
	}
	if p.Value != nil {
		cols["value"] = *p.Value
	}
	if p.Stage != nil {
		cols["stage"] = *p.Stage
	}
	if p.Owner != nil {
		cols["owner"] = *p.Owner
	}
	if p.NextAction != nil {
		cols["next_action"] = *p.NextAction
	}
	if p.ExpectedCloseDate != nil {
		cols["expected_close_date"] = *p.ExpectedCloseDate
	}
	if p.Probability != nil {
		cols["probability"] = *p.Probability
	}
	return cols
}

// ListOpportunities returns all deals, oldest first so board columns keep a stable order
func ListOpportunities(db *gorm.DB) ([]models.Opportunity, error) {
	var opps []models.Opportunity
	if err := db.Order("created_at ASC").Order("id ASC").Find(&opps).Error; err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return opps, nil
}

// GetOpportunity fetches one deal
func GetOpportunity(db *gorm.DB, id string) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := db.First(&opp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return &opp, nil
}

// CreateOpportunity opens a deal in Prospecting
func CreateOpportunity(db *gorm.DB, input OpportunityInput) (*models.Opportunity, error) {
	closeDate, err := NormalizeCloseDate(input.ExpectedCloseDate)
	if err != nil {
		return nil, err
	}

	opp := models.Opportunity{
		Title:             strings.TrimSpace(input.Title),
		CompanyName:       strings.TrimSpace(input.CompanyName),
		Value:             input.Value,
		Stage:             models.StageProspecting,
		Owner:             strings.TrimSpace(input.Owner),
		NextAction:        input.NextAction,
		ExpectedCloseDate: closeDate,
		Probability:       models.DefaultOpportunityProbability,
	}
	if opp.Owner == "" {
		opp.Owner = models.DefaultOpportunityOwner
	}
	if input.Probability != nil {
		opp.Probability = *input.Probability
	}

	if err := db.Create(&opp).Error; err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return &opp, nil
}

// UpdateOpportunity applies a partial update
func UpdateOpportunity(db *gorm.DB, id string, patch OpportunityPatch) (*models.Opportunity, error) {
	if patch.Stage != nil && !models.IsValidSalesStage(*patch.Stage) {
		return nil, ErrInvalidStage
	}
	if patch.ExpectedCloseDate != nil {
		closeDate, err := NormalizeCloseDate(*patch.ExpectedCloseDate)
		if err != nil {
			return nil, err
		}
		patch.ExpectedCloseDate = &closeDate
	}

	if cols := patch.Columns(); len(cols) > 0 {
		result := db.Model(&models.Opportunity{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update opportunity: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrOpportunityNotFound
		}
	}
	return GetOpportunity(db, id)
}

// UpdateOpportunityStage moves a deal to any stage, including reopening Won or Lost
func UpdateOpportunityStage(db *gorm.DB, id string, stage models.SalesStage) error {
	if !models.IsValidSalesStage(string(stage)) {
		return ErrInvalidStage
	}

	result := db.Model(&models.Opportunity{}).Where("id = ?", id).Update("stage", stage)
	if result.Error != nil {
		return fmt.Errorf("failed to update stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

// DeleteOpportunity removes a deal
func DeleteOpportunity(db *gorm.DB, id string) error {
	result := db.Delete(&models.Opportunity{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete opportunity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

// Board is a client's working copy of the pipeline
type Board struct {
	Opportunities []models.Opportunity
}

// BoardColumn is one stage with its cards
type BoardColumn struct {
	Stage models.SalesStage    `json:"stage"`
	Value float64              `json:"value"`
	Cards []models.Opportunity `json:"cards"`
}

// LoadBoard reads the authoritative board
func LoadBoard(db *gorm.DB) (*Board, error) {
	opps, err := ListOpportunities(db)
	if err != nil {
		return nil, err
	}
	return &Board{Opportunities: opps}, nil
}

// Columns groups the cards by stage in board order
func (b *Board) Columns() []BoardColumn {
	cols := make([]BoardColumn, len(models.AllSalesStages))
	index := map[models.SalesStage]int{}
	for i, stage := range models.AllSalesStages {
		cols[i] = BoardColumn{Stage: stage, Cards: []models.Opportunity{}}
		index[stage] = i
	}
	for _, opp := range b.Opportunities {
		i, ok := index[opp.Stage]
		if !ok {
			continue
		}
		cols[i].Cards = append(cols[i].Cards, opp)
		cols[i].Value += opp.Value
	}
	return cols
}

// MoveCard applies the move to the board first, then persists it. When the
// store rejects the move the board is replaced by a fresh read and the error
// is returned.
func MoveCard(db *gorm.DB, board *Board, id string, stage models.SalesStage) error {
	if !models.IsValidSalesStage(string(stage)) {
		return ErrInvalidStage
	}

	idx := -1
	for i := range board.Opportunities {
		if board.Opportunities[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrOpportunityNotFound
	}

	previous := board.Opportunities[idx].Stage
	board.Opportunities[idx].Stage = stage

	if err := UpdateOpportunityStage(db, id, stage); err != nil {
		fresh, reloadErr := ListOpportunities(db)
		if reloadErr != nil {
			logger.L().Error("Board reload after failed move failed", zap.String("opportunity_id", id), zap.Error(reloadErr))
			board.Opportunities[idx].Stage = previous
			return err
		}
		board.Opportunities = fresh
		return err
	}
	return nil
}

// StageTotal is the count and value of one stage
type StageTotal struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// PipelineSummary aggregates the board
type PipelineSummary struct {
	PipelineValue float64                          `json:"pipelineValue"`
	WinRate       int                              `json:"winRate"`
	ActiveDeals   int                              `json:"activeDeals"`
	WonDeals      int                              `json:"wonDeals"`
	LostDeals     int                              `json:"lostDeals"`
	Stages        map[models.SalesStage]StageTotal `json:"stages"`
}

// SummarizePipeline sums open deal value and computes the win rate as
// round(won / (won + lost) * 100), or 0 with no closed deals.
func SummarizePipeline(opps []models.Opportunity) PipelineSummary {
	s := PipelineSummary{Stages: map[models.SalesStage]StageTotal{}}
	for _, opp := range opps {
		total := s.Stages[opp.Stage]
		total.Count++
		total.Value += opp.Value
		s.Stages[opp.Stage] = total

		switch opp.Stage {
		case models.StageWon:
			s.WonDeals++
		case models.StageLost:
			s.LostDeals++
		default:
			s.PipelineValue += opp.Value
			s.ActiveDeals++
		}
	}

	if closed := s.WonDeals + s.LostDeals; closed > 0 {
		s.WinRate = int(math.Round(float64(s.WonDeals) / float64(closed) * 100))
	}
	return s
}
