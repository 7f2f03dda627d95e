package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generated document kinds
const (
	DocumentKindRateConfirmation = "rate_confirmation"
	DocumentKindCDRExport        = "cdr_export"
)

// GeneratedDocument records a file produced or archived by the app
type GeneratedDocument struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Kind       string    `gorm:"not null;index" json:"kind"`
	LoadID     *string   `gorm:"type:uuid;index" json:"loadId,omitempty"`
	LeadID     *string   `gorm:"type:uuid" json:"leadId,omitempty"`
	FileName   string    `json:"fileName"`
	StorageKey string    `gorm:"not null" json:"storageKey"`
	URL        string    `json:"url"`
	FileSize   int64     `json:"fileSize"`
}

// BeforeCreate hook to generate UUID
func (d *GeneratedDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GeneratedDocument model
func (GeneratedDocument) TableName() string {
	return "generated_documents"
}

// All returns every model for AutoMigrate, parents first
func All() []interface{} {
	return []interface{}{
		&Lead{},
		&Note{},
		&CallLog{},
		&Opportunity{},
		&Driver{},
		&Asset{},
		&Load{},
		&Trip{},
		&Stop{},
		&GeneratedDocument{},
	}
}
