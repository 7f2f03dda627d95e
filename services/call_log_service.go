package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch_crm_go/models"

	"gorm.io/gorm"
)

// DefaultManualCallNote is used when a dispatcher logs a desk-phone call without a note
const DefaultManualCallNote = "Manual Log - Desk Phone"

// DefaultCallHistoryLimit bounds the call history view
const DefaultCallHistoryLimit = 200

// CallLogInput is a call logged by hand from the dialer
type CallLogInput struct {
	LeadID          *string    `json:"leadId"`
	PhoneNumber     string     `json:"phoneNumber" validate:"required_without=LeadID,max=32"`
	Outcome         string     `json:"outcome" validate:"max=64"`
	DurationSeconds int        `json:"durationSeconds" validate:"gte=0"`
	Note            string     `json:"note" validate:"max=4000"`
	RecordingURL    *string    `json:"recordingUrl" validate:"omitempty,url"`
	Direction       string     `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Timestamp       *time.Time `json:"timestamp"`
}

// LogCall records a manual call. Without a lead id the lead is looked up by phone
// number; an unmatched call is stored unlinked.
func LogCall(db *gorm.DB, input CallLogInput) (*models.CallLog, error) {
	entry := models.CallLog{
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		Outcome:         strings.TrimSpace(input.Outcome),
		DurationSeconds: input.DurationSeconds,
		Notes:           SanitizeText(input.Note),
		RecordingURL:    input.RecordingURL,
		Direction:       input.Direction,
		Source:          models.CallSourceManual,
		Timestamp:       time.Now().UTC(),
	}
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		entry.Timestamp = input.Timestamp.UTC()
	}
	if entry.Notes == "" {
		entry.Notes = DefaultManualCallNote
	}
	if entry.Outcome == "" {
		entry.Outcome = "Completed"
	}
	if entry.Direction == "" {
		entry.Direction = "outbound"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if input.LeadID != nil && *input.LeadID != "" {
			var lead models.Lead
			if err := tx.Select("id", "phone_number").First(&lead, "id = ?", *input.LeadID).Error; err != nil {
				return ErrLeadNotFound
			}
			entry.LeadID = &lead.ID
			if entry.PhoneNumber == "" {
				entry.PhoneNumber = lead.PhoneNumber
			}
		} else {
			leadID, ok, err := ResolveLeadIDByPhone(tx, entry.PhoneNumber)
			if err != nil {
				return err
			}
			if ok {
				entry.LeadID = &leadID
			}
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if entry.LeadID != nil {
			return advanceLastCallTime(tx, *entry.LeadID, entry.Timestamp)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to log call: %w", err)
	}
	return &entry, nil
}

// advanceLastCallTime moves a lead's last-call time forward, never back
func advanceLastCallTime(db *gorm.DB, leadID string, ts time.Time) error {
	ts = ts.UTC()
	return db.Model(&models.Lead{}).
		Where("id = ? AND (last_call_time IS NULL OR last_call_time < ?)", leadID, ts).
		Update("last_call_time", ts).Error
}

// ListCallHistory returns recent calls, newest first, with the linked company name
func ListCallHistory(db *gorm.DB, limit int) ([]models.CallLog, error) {
	if limit <= 0 {
		limit = DefaultCallHistoryLimit
	}

	var logs []models.CallLog
	err := db.Model(&models.CallLog{}).
		Select("call_logs.*, leads.company_name AS company_name").
		Joins("LEFT JOIN leads ON leads.id = call_logs.lead_id").
		Order("call_logs.timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list call history: %w", err)
	}
	return logs, nil
}

// CallLogExists reports whether a call for the lead at exactly ts is already stored
func CallLogExists(db *gorm.DB, leadID string, ts time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.CallLog{}).
		Where("lead_id = ? AND timestamp = ?", leadID, ts.UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check call log: %w", err)
	}
	return count > 0, nil
}
