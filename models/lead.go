package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadStatus is the dispatcher-facing disposition of a lead
type LeadStatus string

// Lead status constants
const (
	LeadStatusNew                LeadStatus = "NEW"
	LeadStatusCalling            LeadStatus = "CALLING"
	LeadStatusRetry              LeadStatus = "RETRY"
	LeadStatusInterested         LeadStatus = "INTERESTED"
	LeadStatusNotInterested      LeadStatus = "NOT_INTERESTED"
	LeadStatusWrongNumber        LeadStatus = "WRONG_NUMBER"
	LeadStatusDisconnectedNumber LeadStatus = "DISCONNECTED_NUMBER"
	LeadStatusDNC                LeadStatus = "DNC"
	LeadStatusBooked             LeadStatus = "BOOKED"
	LeadStatusOnboarded          LeadStatus = "ONBOARDED"
)

// LeadSourceManual tags leads entered one at a time
const LeadSourceManual = "Manual Add"

// AllLeadStatuses lists every status in display order
var AllLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusCalling,
	LeadStatusRetry,
	LeadStatusInterested,
	LeadStatusNotInterested,
	LeadStatusWrongNumber,
	LeadStatusDisconnectedNumber,
	LeadStatusDNC,
	LeadStatusBooked,
	LeadStatusOnboarded,
}

// QueueStatuses are the statuses eligible for the call queue, highest priority first
var QueueStatuses = []LeadStatus{LeadStatusRetry, LeadStatusNew}

// IsValidLeadStatus checks if the status is one of the known values
func IsValidLeadStatus(status string) bool {
	for _, s := range AllLeadStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

// QueuePriority ranks a status for the call queue. Lower ranks are served first;
// ok is false for statuses that never enter the queue.
func QueuePriority(status LeadStatus) (rank int, ok bool) {
	for i, s := range QueueStatuses {
		if s == status {
			return i, true
		}
	}
	return 0, false
}

// Lead represents a carrier prospect worked by the dispatch desk
type Lead struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SerialNumber int    `gorm:"not null;index" json:"serialNumber"`
	CompanyName  string `gorm:"not null" json:"companyName"`
	MCNumber     string `gorm:"column:mc_number;index" json:"mcNumber"`
	DOTNumber    string `gorm:"column:dot_number;index" json:"dotNumber"`
	PhoneNumber  string `json:"phoneNumber"`
	// Digits of PhoneNumber, kept in sync by the save hooks for suffix matching
	PhoneDigits string `gorm:"index" json:"-"`
	Email       string `json:"email"`
	State       string `gorm:"size:64" json:"state,omitempty"`
	Address     string `json:"address,omitempty"`
	TruckCount  int    `json:"truckCount"`

	Status       LeadStatus `gorm:"not null;default:NEW;index" json:"status"`
	LastCallTime *time.Time `gorm:"index" json:"lastCallTime,omitempty"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
	Source       string     `gorm:"not null;default:'Manual Add';index" json:"source"`

	Notes []Note `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"notes"`
}

var nonDigit = regexp.MustCompile(`\D`)

// BeforeCreate hook to generate UUID and default status/source
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	if l.Source == "" {
		l.Source = LeadSourceManual
	}
	if l.SerialNumber == 0 {
		var max int
		if err := tx.Session(&gorm.Session{NewDB: true}).Model(&Lead{}).
			Select("COALESCE(MAX(serial_number), 0)").Scan(&max).Error; err != nil {
			return err
		}
		l.SerialNumber = max + 1
	}
	return nil
}

// BeforeSave keeps PhoneDigits in sync with PhoneNumber
func (l *Lead) BeforeSave(tx *gorm.DB) error {
	l.PhoneDigits = nonDigit.ReplaceAllString(l.PhoneNumber, "")
	return nil
}

// TableName specifies the table name for Lead model
func (Lead) TableName() string {
	return "leads"
}

// IsQueued checks if the lead is waiting in the call queue
func (l *Lead) IsQueued() bool {
	_, ok := QueuePriority(l.Status)
	return ok
}

// Note is an immutable entry in a lead's note log
type Note struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	LeadID    string    `gorm:"type:uuid;not null;index" json:"leadId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// BeforeCreate hook to generate UUID and timestamp
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	return nil
}

// TableName specifies the table name for Note model
func (Note) TableName() string {
	return "notes"
}
