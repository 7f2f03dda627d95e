package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainTextPolicy = bluemonday.StrictPolicy()

// SanitizeText strips any markup from free text (notes, call notes) before it is stored
func SanitizeText(s string) string {
	// StrictPolicy escapes entities; notes are stored as plain text
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}
