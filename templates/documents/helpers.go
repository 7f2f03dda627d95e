package documents

import (
	"fmt"
	"strings"
	"time"
)

// Money formats a dollar amount with thousands separators, e.g. $2,450.00
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	whole := fmt.Sprintf("%.2f", amount)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

// formatDateTime renders an optional appointment time, or TBD
func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "TBD"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatNumber(v float64, unit string) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f %s", v, unit)
}
