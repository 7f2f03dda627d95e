package services

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dispatch_crm_go/models"

	"gorm.io/gorm"
)

// Logical lead columns
const (
	leadFieldCompany = "company"
	leadFieldMC      = "mc"
	leadFieldDOT     = "dot"
	leadFieldPhone   = "phone"
	leadFieldEmail   = "email"
	leadFieldState   = "state"
	leadFieldAddress = "address"
	leadFieldTrucks  = "trucks"
)

var leadHeaderAliases = map[string][]string{
	leadFieldCompany: {"company", "company name", "legal name", "carrier", "carrier name", "dba name", "name"},
	leadFieldMC:      {"mc", "mc number", "mc #", "mc no", "docket", "docket number"},
	leadFieldDOT:     {"dot", "dot number", "dot #", "usdot", "usdot number"},
	leadFieldPhone:   {"phone", "phone number", "telephone", "tel", "phone #", "contact phone"},
	leadFieldEmail:   {"email", "email address", "e-mail"},
	leadFieldState:   {"state", "st", "physical state"},
	leadFieldAddress: {"address", "physical address", "location", "mailing address"},
	leadFieldTrucks:  {"trucks", "truck count", "power units", "units", "fleet size"},
}

// positionalLeadColumns is the column order assumed when the sheet has no recognizable header
var positionalLeadColumns = []string{leadFieldCompany, leadFieldMC, leadFieldPhone, leadFieldEmail, leadFieldState, leadFieldTrucks}

// LeadTemplateHeaders are the canonical import columns
var LeadTemplateHeaders = []string{"Company Name", "MC Number", "DOT Number", "Phone Number", "Email", "State", "Address", "Truck Count"}

// cityStateZip matches the tail of "123 Main St, Dallas, TX 75001"
var cityStateZip = regexp.MustCompile(`,\s*([A-Za-z]{2})\.?\s+\d{5}(?:-\d{4})?\s*$`)

// DeriveStateFromAddress extracts the two-letter state from an address ending in "CITY, ST 12345"
func DeriveStateFromAddress(address string) string {
	m := cityStateZip.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// maxTruckCount bounds parsed counts; larger values are treated as malformed
const maxTruckCount = math.MaxInt32

// parseTruckCount reads counts like "12", "12.0" or "12 trucks"; anything else is 0
func parseTruckCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > maxTruckCount {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 || f > maxTruckCount || math.IsNaN(f) {
			return 0
		}
		return int(f)
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		return parseTruckCount(fields[0])
	}
	return 0
}

// ParseLeadSpreadsheet reads leads from a CSV or XLSX file. Headers are matched
// by alias; without a recognizable header row the columns are read in the order
// Company, MC, Phone, Email, State, Trucks after skipping the first row.
func ParseLeadSpreadsheet(r io.Reader, filename string) ([]LeadInput, error) {
	rows, err := readTable(r, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headerIdx, headers := findHeaderRow(rows, leadHeaderAliases, 2)
	if headers == nil {
		headerIdx = 0
		headers = headerMap{}
		for i, field := range positionalLeadColumns {
			headers[field] = i
		}
	}

	var leads []LeadInput
	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}

		lead := LeadInput{
			CompanyName: headers.cell(row, leadFieldCompany),
			MCNumber:    headers.cell(row, leadFieldMC),
			DOTNumber:   headers.cell(row, leadFieldDOT),
			PhoneNumber: headers.cell(row, leadFieldPhone),
			Email:       headers.cell(row, leadFieldEmail),
			State:       strings.ToUpper(headers.cell(row, leadFieldState)),
			Address:     headers.cell(row, leadFieldAddress),
			TruckCount:  parseTruckCount(headers.cell(row, leadFieldTrucks)),
		}
		if lead.CompanyName == "" && lead.PhoneNumber == "" {
			continue
		}
		if lead.State == "" {
			lead.State = DeriveStateFromAddress(lead.Address)
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// LeadImportResult summarizes a file import
type LeadImportResult struct {
	Source   string `json:"source"`
	Parsed   int    `json:"parsed"`
	Imported int    `json:"imported"`
}

// ImportLeadsFromFile parses a spreadsheet and bulk imports it under the label
func ImportLeadsFromFile(db *gorm.DB, r io.Reader, filename, sourceLabel string) (*LeadImportResult, error) {
	if strings.TrimSpace(sourceLabel) == "" {
		return nil, ErrEmptySourceLabel
	}

	rows, err := ParseLeadSpreadsheet(r, filename)
	if err != nil {
		return nil, err
	}

	n, err := BulkImportLeads(db, rows, sourceLabel)
	if err != nil {
		return nil, err
	}
	return &LeadImportResult{Source: strings.TrimSpace(sourceLabel), Parsed: len(rows), Imported: n}, nil
}

// ExportLeadsXLSX writes one row per lead
func ExportLeadsXLSX(leads []models.Lead) (*bytes.Buffer, error) {
	headers := []string{"Serial", "Company Name", "MC Number", "DOT Number", "Phone Number", "Email", "State", "Address", "Truck Count", "Status", "Last Call", "Source", "Created"}

	rows := make([][]interface{}, 0, len(leads))
	for _, l := range leads {
		lastCall := ""
		if l.LastCallTime != nil {
			lastCall = l.LastCallTime.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []interface{}{
			l.SerialNumber, l.CompanyName, l.MCNumber, l.DOTNumber, l.PhoneNumber, l.Email,
			l.State, l.Address, l.TruckCount, string(l.Status), lastCall, l.Source,
			l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	buf, err := writeSheet("Leads", headers, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build lead export: %w", err)
	}
	return buf, nil
}

// GenerateLeadImportTemplate returns an XLSX with the canonical headers and one example row
func GenerateLeadImportTemplate() (*bytes.Buffer, error) {
	example := [][]interface{}{{
		"Example Trucking LLC", "MC123456", "3456789", "(214) 555-0100", "dispatch@example.com", "", "100 Main St, Dallas, TX 75001", 5,
	}}
	buf, err := writeSheet("Leads", LeadTemplateHeaders, example)
	if err != nil {
		return nil, fmt.Errorf("failed to build import template: %w", err)
	}
	return buf, nil
}
