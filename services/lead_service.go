package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeadPageSize is the explicit page size used when listing leads. Hosted stores
// cap unbounded selects, so ListLeads always pages.
const LeadPageSize = 1000

// leadPageSize is overridden in tests
var leadPageSize = LeadPageSize

// importBatchSize bounds the rows per INSERT during bulk imports
const importBatchSize = 200

// queueOrder ranks queued leads: RETRY before NEW, then never-called leads,
// then the oldest call, then the oldest lead.
var queueOrder = buildQueueOrder()

func buildQueueOrder() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for _, status := range models.QueueStatuses {
		rank, _ := models.QueuePriority(status)
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", status, rank)
	}
	fmt.Fprintf(&b, " ELSE %d END, last_call_time IS NOT NULL, last_call_time ASC, created_at ASC, id ASC", len(models.QueueStatuses))
	return b.String()
}

// LeadInput holds the fields accepted when creating or importing a lead
type LeadInput struct {
	CompanyName string `json:"companyName" validate:"required,max=255"`
	MCNumber    string `json:"mcNumber" validate:"max=32"`
	DOTNumber   string `json:"dotNumber" validate:"max=32"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
	Email       string `json:"email" validate:"omitempty,email"`
	State       string `json:"state" validate:"max=64"`
	Address     string `json:"address" validate:"max=512"`
	TruckCount  int    `json:"truckCount" validate:"gte=0"`
	Source      string `json:"source" validate:"max=128"`
}

func (in LeadInput) toModel() models.Lead {
	return models.Lead{
		CompanyName: strings.TrimSpace(in.CompanyName),
		MCNumber:    strings.TrimSpace(in.MCNumber),
		DOTNumber:   strings.TrimSpace(in.DOTNumber),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Email:       strings.TrimSpace(in.Email),
		State:       strings.TrimSpace(in.State),
		Address:     strings.TrimSpace(in.Address),
		TruckCount:  in.TruckCount,
		Status:      models.LeadStatusNew,
	}
}

// LeadPatch is a partial update; nil fields are left untouched
type LeadPatch struct {
	CompanyName  *string    `json:"companyName" validate:"omitempty,max=255"`
	MCNumber     *string    `json:"mcNumber" validate:"omitempty,max=32"`
	DOTNumber    *string    `json:"dotNumber" validate:"omitempty,max=32"`
	PhoneNumber  *string    `json:"phoneNumber" validate:"omitempty,max=32"`
	Email        *string    `json:"email" validate:"omitempty,max=255"`
	State        *string    `json:"state" validate:"omitempty,max=64"`
	Address      *string    `json:"address" validate:"omitempty,max=512"`
	TruckCount   *int       `json:"truckCount" validate:"omitempty,gte=0"`
	Status       *string    `json:"status" validate:"omitempty,leadstatus"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
	Source       *string    `json:"source" validate:"omitempty,max=128"`
}

// Columns maps the present camelCase fields to their snake_case columns
func (p LeadPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			cols[col] = strings.TrimSpace(*v)
		}
	}
	setString("company_name", p.CompanyName)
	setString("mc_number", p.MCNumber)
	setString("dot_number", p.DOTNumber)
	setString("email", p.Email)
	setString("state", p.State)
	setString("address", p.Address)
	setString("source", p.Source)
	if p.PhoneNumber != nil {
		phone := strings.TrimSpace(*p.PhoneNumber)
		cols["phone_number"] = phone
		// Map updates bypass the save hook, keep the match column in step here
		cols["phone_digits"] = nonDigit.ReplaceAllString(phone, "")
	}
	if p.TruckCount != nil {
		cols["truck_count"] = *p.TruckCount
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.NextFollowUp != nil {
		cols["next_follow_up"] = p.NextFollowUp.UTC()
	}
	return cols
}

// LeadSourceSummary counts the leads of one import batch
type LeadSourceSummary struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

func preloadNotes(db *gorm.DB) *gorm.DB {
	return db.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	})
}

// ListLeads returns every lead with its notes, newest first
func ListLeads(db *gorm.DB) ([]models.Lead, error) {
	leads := []models.Lead{}
	for offset := 0; ; offset += leadPageSize {
		var page []models.Lead
		err := preloadNotes(db).
			Order("created_at DESC").
			Order("id DESC").
			Offset(offset).
			Limit(leadPageSize).
			Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list leads: %w", err)
		}
		leads = append(leads, page...)
		if len(page) < leadPageSize {
			break
		}
	}
	return leads, nil
}

// GetLead fetches a lead with its notes
func GetLead(db *gorm.DB, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := preloadNotes(db).First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// CreateLead adds a single lead. Status always starts at NEW and the source
// defaults to "Manual Add".
func CreateLead(db *gorm.DB, input LeadInput) (*models.Lead, error) {
	lead := input.toModel()
	lead.Source = strings.TrimSpace(input.Source)
	if lead.Source == "" {
		lead.Source = models.LeadSourceManual
	}

	if err := db.Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return &lead, nil
}

// BulkImportLeads inserts rows tagged with the batch label and returns the count inserted
func BulkImportLeads(db *gorm.DB, rows []LeadInput, sourceLabel string) (int, error) {
	label := strings.TrimSpace(sourceLabel)
	if label == "" {
		return 0, ErrEmptySourceLabel
	}
	if len(rows) == 0 {
		return 0, nil
	}

	leads := make([]models.Lead, len(rows))
	err := db.Transaction(func(tx *gorm.DB) error {
		// Serials are assigned here; the per-row hook would hand the whole batch the same number
		var maxSerial int
		if err := tx.Model(&models.Lead{}).Select("COALESCE(MAX(serial_number), 0)").Scan(&maxSerial).Error; err != nil {
			return err
		}
		for i, row := range rows {
			leads[i] = row.toModel()
			leads[i].Source = label
			leads[i].SerialNumber = maxSerial + i + 1
		}
		return tx.CreateInBatches(&leads, importBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import leads: %w", err)
	}

	logger.L().Info("Leads imported", zap.String("source", label), zap.Int("count", len(leads)))
	return len(leads), nil
}

// UpdateLeadStatus sets the status and last-call time. A non-empty note is
// also appended to the lead's notes and recorded as a zero-length call whose
// outcome is the new status. All writes share one transaction.
func UpdateLeadStatus(db *gorm.DB, id string, status models.LeadStatus, note string) (*models.Lead, error) {
	if !models.IsValidLeadStatus(string(status)) {
		return nil, ErrInvalidStatus
	}
	note = SanitizeText(note)

	err := db.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&lead).Updates(map[string]interface{}{
			"status":         status,
			"last_call_time": now,
		}).Error; err != nil {
			return err
		}

		if note == "" {
			return nil
		}

		if err := tx.Create(&models.Note{LeadID: id, Content: note, Timestamp: now}).Error; err != nil {
			return err
		}

		leadID := id
		return tx.Create(&models.CallLog{
			LeadID:          &leadID,
			PhoneNumber:     lead.PhoneNumber,
			Outcome:         string(status),
			DurationSeconds: 0,
			Notes:           note,
			Source:          models.CallSourceStatusUpdate,
			Timestamp:       now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return nil, err
		}
		logger.L().Error("Lead status update failed", zap.String("lead_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}

	return GetLead(db, id)
}

// UpdateLeadDetails applies a partial update
func UpdateLeadDetails(db *gorm.DB, id string, patch LeadPatch) (*models.Lead, error) {
	if patch.Status != nil && !models.IsValidLeadStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}

	cols := patch.Columns()
	if len(cols) > 0 {
		result := db.Model(&models.Lead{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update lead: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrLeadNotFound
		}
	}
	return GetLead(db, id)
}

// AddLeadNote appends a note without touching the status
func AddLeadNote(db *gorm.DB, id, content string) (*models.Note, error) {
	content = SanitizeText(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	var count int64
	if err := db.Model(&models.Lead{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check lead: %w", err)
	}
	if count == 0 {
		return nil, ErrLeadNotFound
	}

	note := models.Note{LeadID: id, Content: content, Timestamp: time.Now().UTC()}
	if err := db.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return &note, nil
}

// DeleteLead removes a lead and its notes. Its call logs stay, unlinked.
func DeleteLead(db *gorm.DB, id string) error {
	n, err := deleteLeadIDs(db, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// DeleteLeads removes a batch of leads and returns how many existed
func DeleteLeads(db *gorm.DB, ids []string) (int64, error) {
	return deleteLeadIDs(db, ids)
}

// DeleteLeadsBySource removes every lead tagged with the label
func DeleteLeadsBySource(db *gorm.DB, label string) (int64, error) {
	var ids []string
	if err := db.Model(&models.Lead{}).Where("source = ?", label).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to find leads for source: %w", err)
	}

	n, err := deleteLeadIDs(db, ids)
	if err != nil {
		return 0, err
	}
	logger.L().Info("Leads deleted by source", zap.String("source", label), zap.Int64("count", n))
	return n, nil
}

// deleteChunkSize keeps each IN clause well under SQLite's host parameter limit
var deleteChunkSize = 500

func deleteLeadIDs(db *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(ids); start += deleteChunkSize {
			end := start + deleteChunkSize
			if end > len(ids) {
				end = len(ids)
			}
			chunk := ids[start:end]

			if err := tx.Model(&models.CallLog{}).Where("lead_id IN ?", chunk).Update("lead_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("lead_id IN ?", chunk).Delete(&models.Note{}).Error; err != nil {
				return err
			}
			result := tx.Where("id IN ?", chunk).Delete(&models.Lead{})
			if result.Error != nil {
				return result.Error
			}
			deleted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete leads: %w", err)
	}
	return deleted, nil
}

// GetNextLead returns the lead the dispatcher should call next
func GetNextLead(db *gorm.DB) (*models.Lead, error) {
	var lead models.Lead
	err := preloadNotes(db).
		Where("status IN ?", models.QueueStatuses).
		Order(queueOrder).
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoLeadsInQueue
		}
		return nil, fmt.Errorf("failed to get next lead: %w", err)
	}
	return &lead, nil
}

// ListLeadSources lists import batches with their lead counts
func ListLeadSources(db *gorm.DB) ([]LeadSourceSummary, error) {
	var sources []LeadSourceSummary
	err := db.Model(&models.Lead{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Order("source ASC").
		Scan(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lead sources: %w", err)
	}
	return sources, nil
}
