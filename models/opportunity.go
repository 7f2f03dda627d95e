package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesStage is a column on the pipeline board
type SalesStage string

// Sales stage constants
const (
	StageProspecting   SalesStage = "Prospecting"
	StageQualification SalesStage = "Qualification"
	StageDiscovery     SalesStage = "Discovery / Demo"
	StageProposal      SalesStage = "Proposal"
	StageNegotiation   SalesStage = "Negotiation"
	StageWon           SalesStage = "Won"
	StageLost          SalesStage = "Lost"
)

// AllSalesStages lists the board columns in order
var AllSalesStages = []SalesStage{
	StageProspecting,
	StageQualification,
	StageDiscovery,
	StageProposal,
	StageNegotiation,
	StageWon,
	StageLost,
}

// Opportunity defaults for new deals
const (
	DefaultOpportunityOwner       = "Agent"
	DefaultOpportunityProbability = 20
)

// IsValidSalesStage checks if the stage is one of the board columns
func IsValidSalesStage(stage string) bool {
	for _, s := range AllSalesStages {
		if string(s) == stage {
			return true
		}
	}
	return false
}

// IsClosed reports whether the stage is Won or Lost. Closed deals can still be reopened.
func (s SalesStage) IsClosed() bool {
	return s == StageWon || s == StageLost
}

// Opportunity is a sales deal on the pipeline board
type Opportunity struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title             string     `gorm:"not null" json:"title"`
	CompanyName       string     `json:"companyName"`
	Value             float64    `gorm:"not null;default:0" json:"value"`
	Stage             SalesStage `gorm:"not null;default:Prospecting;index" json:"stage"`
	Owner             string     `json:"owner"`
	NextAction        string     `json:"nextAction"`
	ExpectedCloseDate string     `json:"expectedCloseDate"`
	Probability       int        `json:"probability"`
}

// BeforeCreate hook to generate UUID
func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Opportunity model
func (Opportunity) TableName() string {
	return "opportunities"
}
