package telephony

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Reconciliation stage errors. Each stage fails with its own error so callers
// can tell a report that never finished from one the provider rejected.
var (
	ErrReportCreate   = errors.New("failed to create call detail report")
	ErrReportFailed   = errors.New("call detail report failed")
	ErrReportTimeout  = errors.New("timed out waiting for call detail report")
	ErrReportDownload = errors.New("failed to download call detail report")
	ErrNotConfigured  = errors.New("telephony reporting API key not configured")
)

// APIError is returned for non-2xx responses from the provider
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telephony API returned status %d: %s", e.StatusCode, e.Body)
}

// Report statuses as seen by callers, normalized from the provider's values
const (
	ReportPending  = "pending"
	ReportComplete = "complete"
	ReportFailed   = "failed"
)

// Report is a call-detail export job
type Report struct {
	ID        string
	Status    string
	ReportURL string
}

// ReportClient is the create / poll / download flow of a reporting API
type ReportClient interface {
	// CreateCDRReport requests a call-detail export covering [start, end]
	CreateCDRReport(ctx context.Context, start, end time.Time) (*Report, error)

	// GetReport fetches the current status of an export job
	GetReport(ctx context.Context, id string) (*Report, error)

	// WaitForReport polls until the job completes, fails, or the attempt ceiling is hit
	WaitForReport(ctx context.Context, id string) (*Report, error)

	// Download retrieves the finished export file
	Download(ctx context.Context, url string) ([]byte, error)
}

// ReportOptions configures a ReportClient
type ReportOptions struct {
	BaseURL      string
	APIKey       string
	ConnectionID string
	PollInterval time.Duration
	MaxAttempts  int
	HTTPClient   *http.Client
}

// BaseService provides the shared HTTP client
type BaseService struct {
	client *http.Client
}

// NewBaseService creates a configured base service
func NewBaseService(client *http.Client) BaseService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return BaseService{client: client}
}

// ReportWindow returns the reconciliation window: start of the prior calendar day through now
func ReportWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	return start, now
}
