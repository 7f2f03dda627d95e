package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/models"
	"dispatch_crm_go/services/telephony"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Logical call-detail columns
const (
	cdrFieldDestination = "destination"
	cdrFieldSource      = "source"
	cdrFieldDuration    = "duration"
	cdrFieldStart       = "start"
	cdrFieldStatus      = "status"
	cdrFieldDirection   = "direction"
	cdrFieldRecording   = "recording"
)

var cdrHeaderAliases = map[string][]string{
	cdrFieldDestination: {"destination", "destination number", "to", "to number", "called number", "dialed number", "callee", "cld"},
	cdrFieldSource:      {"source", "source number", "from", "from number", "caller", "caller id", "calling number", "cli"},
	cdrFieldDuration:    {"duration", "duration seconds", "duration (s)", "call duration", "billsec", "billed duration", "billed sec", "talk time"},
	cdrFieldStart:       {"start time", "started at", "start", "start date", "call date", "date", "timestamp", "created at", "date/time"},
	cdrFieldStatus:      {"status", "call status", "disposition", "result", "hangup cause"},
	cdrFieldDirection:   {"direction", "call direction"},
	cdrFieldRecording:   {"recording url", "recording", "recording link"},
}

// cdrTimeLayouts are tried in order; zone-less values are read as UTC
var cdrTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
}

const reconciledCallNote = "Auto-synced from carrier call report"

// CDRRecord is one call from a provider export
type CDRRecord struct {
	Destination     string
	Source          string
	DurationSeconds int
	StartedAt       time.Time
	Status          string
	Direction       string
	RecordingURL    string
}

// CDRExport is a parsed export. Rows without a usable date are only counted.
type CDRExport struct {
	Records []CDRRecord
	Undated int
}

// SyncResult reports what a reconciliation run did
type SyncResult struct {
	ReportID   string `json:"reportId,omitempty"`
	Rows       int    `json:"rows"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`    // no matching lead or no date
	Duplicates int    `json:"duplicates"` // already stored for the same lead and instant
}

func parseCDRTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range cdrTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// Unformatted Excel cells come through as serial day numbers
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 1 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC().Round(time.Second), true
		}
	}
	return time.Time{}, false
}

// parseDuration accepts seconds ("95", "95.4") or clock values ("1:35", "00:01:35")
func parseDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f + 0.5)
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// ParseCDRExport reads a provider call-detail export (CSV or XLSX)
func ParseCDRExport(data []byte, filename string) (*CDRExport, error) {
	rows, err := readTable(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}

	export := &CDRExport{}
	headerIdx, headers := findHeaderRow(rows, cdrHeaderAliases, 2)
	if headers == nil {
		if len(rows) == 0 {
			return export, nil
		}
		return nil, fmt.Errorf("call report has no recognizable header row")
	}

	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}
		startedAt, ok := parseCDRTime(headers.cell(row, cdrFieldStart))
		if !ok {
			export.Undated++
			continue
		}
		export.Records = append(export.Records, CDRRecord{
			Destination:     headers.cell(row, cdrFieldDestination),
			Source:          headers.cell(row, cdrFieldSource),
			DurationSeconds: parseDuration(headers.cell(row, cdrFieldDuration)),
			StartedAt:       startedAt,
			Status:          headers.cell(row, cdrFieldStatus),
			Direction:       strings.ToLower(headers.cell(row, cdrFieldDirection)),
			RecordingURL:    headers.cell(row, cdrFieldRecording),
		})
	}
	return export, nil
}

// ApplyCDRRecords links each record to a lead and stores the new ones.
// Destination is tried before source. Rows already stored for the same lead
// and instant are skipped, so repeated syncs do not double-insert. Rows are
// committed one by one; an error stops the run and leaves earlier rows in place.
func ApplyCDRRecords(db *gorm.DB, records []CDRRecord) (*SyncResult, error) {
	result := &SyncResult{Rows: len(records)}

	for _, rec := range records {
		number := rec.Destination
		leadID, ok, err := ResolveLeadIDByPhone(db, rec.Destination)
		if err != nil {
			return result, err
		}
		if !ok {
			number = rec.Source
			leadID, ok, err = ResolveLeadIDByPhone(db, rec.Source)
			if err != nil {
				return result, err
			}
		}
		if !ok {
			result.Skipped++
			continue
		}

		ts := rec.StartedAt.UTC()
		exists, err := CallLogExists(db, leadID, ts)
		if err != nil {
			return result, err
		}
		if exists {
			result.Duplicates++
			continue
		}

		entry := models.CallLog{
			LeadID:          &leadID,
			PhoneNumber:     number,
			Outcome:         rec.Status,
			DurationSeconds: rec.DurationSeconds,
			Notes:           reconciledCallNote,
			Direction:       rec.Direction,
			Source:          models.CallSourceReconciliation,
			Timestamp:       ts,
		}
		if entry.Outcome == "" {
			entry.Outcome = "Completed"
		}
		if rec.RecordingURL != "" {
			u := rec.RecordingURL
			entry.RecordingURL = &u
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return advanceLastCallTime(tx, leadID, ts)
		})
		if err != nil {
			return result, fmt.Errorf("failed to store reconciled call: %w", err)
		}
		result.Inserted++
	}
	return result, nil
}

// ImportCDRFile processes a call report uploaded by hand
func ImportCDRFile(db *gorm.DB, data []byte, filename string) (*SyncResult, error) {
	export, err := ParseCDRExport(data, filename)
	if err != nil {
		return nil, err
	}
	result, err := ApplyCDRRecords(db, export.Records)
	if result != nil {
		result.Rows += export.Undated
		result.Skipped += export.Undated
	}
	return result, err
}

// Reconciler pulls call-detail reports from the telephony provider into call logs
type Reconciler struct {
	db      *gorm.DB
	client  telephony.ReportClient
	storage StorageProvider
	now     func() time.Time
}

// NewReconciler creates a reconciler. storage may be nil, which disables archiving raw exports.
func NewReconciler(db *gorm.DB, client telephony.ReportClient, storage StorageProvider) *Reconciler {
	return &Reconciler{db: db, client: client, storage: storage, now: time.Now}
}

// Sync requests the report for the start of yesterday through now, waits for it,
// downloads it and applies its rows.
func (r *Reconciler) Sync(ctx context.Context) (*SyncResult, error) {
	start, end := telephony.ReportWindow(r.now())
	log := logger.L().With(zap.Time("window_start", start), zap.Time("window_end", end))

	report, err := r.client.CreateCDRReport(ctx, start, end)
	if err != nil {
		log.Error("Call report request failed", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("report_id", report.ID))

	ready, err := r.client.WaitForReport(ctx, report.ID)
	if err != nil {
		log.Error("Call report did not complete", zap.Error(err))
		return nil, err
	}

	data, err := r.client.Download(ctx, ready.ReportURL)
	if err != nil {
		log.Error("Call report download failed", zap.Error(err))
		return nil, err
	}

	filename := reportFilename(ready.ReportURL)
	r.archive(ctx, data, filename)

	result, err := ImportCDRFile(r.db, data, filename)
	if result != nil {
		result.ReportID = report.ID
	}
	if err != nil {
		log.Error("Call reconciliation aborted", zap.Error(err))
		return result, err
	}

	log.Info("Call reconciliation finished",
		zap.Int("rows", result.Rows),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

// archive keeps the raw export; failures are logged and do not stop the sync
func (r *Reconciler) archive(ctx context.Context, data []byte, filename string) {
	if r.storage == nil {
		return
	}

	key := CDRArchiveKey(r.now(), filename)
	stored, err := r.storage.Put(ctx, key, data, contentTypeFor(filename))
	if err != nil {
		logger.L().Warn("Failed to archive call report", zap.String("key", key), zap.Error(err))
		return
	}

	doc := models.GeneratedDocument{
		Kind:       models.DocumentKindCDRExport,
		FileName:   filename,
		StorageKey: stored.Key,
		URL:        stored.URL,
		FileSize:   stored.FileSize,
	}
	if err := r.db.Create(&doc).Error; err != nil {
		logger.L().Warn("Failed to record archived call report", zap.String("key", key), zap.Error(err))
	}
}

// reportFilename takes the file name from a download link, defaulting to CSV
func reportFilename(link string) string {
	if u, err := url.Parse(link); err == nil {
		name := path.Base(u.Path)
		switch strings.ToLower(path.Ext(name)) {
		case ".csv", ".xlsx", ".xlsm":
			return name
		}
	}
	return "call-report.csv"
}
