package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// readTable loads the first sheet of an XLSX file, or a CSV file, as rows of cells
func readTable(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		// Excel-saved CSVs start with a byte order mark
		if len(rows) > 0 && len(rows[0]) > 0 {
			rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFile
	}
}

// normalizeHeader lowercases and drops everything but letters and digits,
// so "MC #", "mc_number" and "MC Number" compare as "mc" / "mcnumber".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerMap resolves logical field names to column indexes using header aliases
type headerMap map[string]int

// matchHeaders maps a header row onto fields. Each field takes the first column
// matching any of its aliases.
func matchHeaders(row []string, aliases map[string][]string) headerMap {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = normalizeHeader(cell)
	}

	m := headerMap{}
	for field, names := range aliases {
		for _, name := range names {
			want := normalizeHeader(name)
			found := false
			for i, h := range normalized {
				if h == want {
					m[field] = i
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return m
}

// findHeaderRow scans the first rows for the one matching the most aliases
func findHeaderRow(rows [][]string, aliases map[string][]string, minMatches int) (int, headerMap) {
	best, bestMap := -1, headerMap(nil)
	for i := 0; i < len(rows) && i < 10; i++ {
		m := matchHeaders(rows[i], aliases)
		if len(m) >= minMatches && (bestMap == nil || len(m) > len(bestMap)) {
			best, bestMap = i, m
		}
	}
	return best, bestMap
}

// cell returns the trimmed value of a field, or "" when the column is absent
func (h headerMap) cell(row []string, field string) string {
	idx, ok := h[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// writeSheet fills a new workbook's first sheet with a bold header row and data rows
func writeSheet(sheet string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F2937"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
