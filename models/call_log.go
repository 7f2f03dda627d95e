package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Call log sources
const (
	CallSourceManual         = "manual"
	CallSourceStatusUpdate   = "status_update"
	CallSourceReconciliation = "reconciliation"
)

// CallLog records a single call, optionally linked to a lead by phone match
type CallLog struct {
	ID string `gorm:"type:uuid;primarykey" json:"id"`

	// Nullable: calls to numbers that match no lead stay unlinked
	LeadID *string `gorm:"type:uuid;index:idx_call_lead_ts" json:"leadId"`
	Lead   *Lead   `gorm:"foreignKey:LeadID;constraint:OnDelete:SET NULL" json:"-"`

	PhoneNumber     string  `gorm:"index" json:"phoneNumber"`
	Outcome         string  `json:"outcome"` // free text, not constrained to LeadStatus
	DurationSeconds int     `gorm:"not null;default:0" json:"durationSeconds"`
	Notes           string  `gorm:"type:text" json:"note"`
	RecordingURL    *string `json:"recordingUrl,omitempty"`
	Direction       string  `gorm:"size:16" json:"direction,omitempty"`
	Source          string  `gorm:"size:32;not null;default:manual" json:"source"`

	// Creation instant; (lead_id, timestamp) identifies duplicates
	Timestamp time.Time `gorm:"not null;index:idx_call_lead_ts" json:"timestamp"`

	// Read-only, joined from the lead
	CompanyName string `gorm:"->;-:migration" json:"companyName,omitempty"`
}

// BeforeCreate hook to generate UUID and timestamp
func (c *CallLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	if c.Source == "" {
		c.Source = CallSourceManual
	}
	return nil
}

// TableName specifies the table name for CallLog model
func (CallLog) TableName() string {
	return "call_logs"
}
