package services

import (
	"strings"
	"time"
)

// closeDateLayouts are the date formats accepted for expected close dates.
// ISO comes first because HTML5 date inputs send it.
var closeDateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// NormalizeCloseDate returns the date as YYYY-MM-DD. Empty stays empty.
func NormalizeCloseDate(dateStr string) (string, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return "", nil
	}
	for _, layout := range closeDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", ErrInvalidDate
}
