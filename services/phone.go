package services

import (
	"fmt"
	"regexp"

	"dispatch_crm_go/models"

	"gorm.io/gorm"
)

// minMatchDigits is the shortest normalized number that is allowed to match a lead
const minMatchDigits = 5

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone strips formatting and keeps the last 10 digits, dropping any country code
func NormalizePhone(phone string) string {
	digits := nonDigit.ReplaceAllString(phone, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// ResolveLeadIDByPhone finds the lead whose stored number contains the normalized digits.
//
// The match is a substring match so "+1 (214) 555-0100" and "2145550100" land on the same
// lead. Two leads sharing a 10-digit suffix cannot be told apart; the oldest one wins.
// Numbers with fewer than 5 digits never match.
func ResolveLeadIDByPhone(db *gorm.DB, phone string) (string, bool, error) {
	digits := NormalizePhone(phone)
	if len(digits) < minMatchDigits {
		return "", false, nil
	}

	var ids []string
	err := db.Model(&models.Lead{}).
		Where("phone_digits LIKE ?", "%"+digits+"%").
		Order("created_at ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve phone number: %w", err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}
