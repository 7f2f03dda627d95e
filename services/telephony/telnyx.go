package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Telnyx v2 API root
const DefaultBaseURL = "https://api.telnyx.com/v2"

const cdrReportPath = "/legacy/reporting/batch_detail_records/voice"

// TelnyxService implements ReportClient against the Telnyx reporting API
type TelnyxService struct {
	BaseService
	baseURL      string
	apiKey       string
	connectionID string
	pollInterval time.Duration
	maxAttempts  int
}

// NewTelnyxService creates a reporting client; zero-valued options fall back to 2s x 15 polling
func NewTelnyxService(opts ReportOptions) *TelnyxService {
	s := &TelnyxService{
		BaseService:  NewBaseService(opts.HTTPClient),
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		connectionID: opts.ConnectionID,
		pollInterval: opts.PollInterval,
		maxAttempts:  opts.MaxAttempts,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 2 * time.Second
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 15
	}
	return s
}

type telnyxReportRequest struct {
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Connections []string `json:"connections,omitempty"`
	ReportName  string   `json:"report_name,omitempty"`
}

type telnyxReportEnvelope struct {
	Data struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		ReportURL string `json:"report_url"`
	} `json:"data"`
}

// CreateCDRReport implements ReportClient
func (s *TelnyxService) CreateCDRReport(ctx context.Context, start, end time.Time) (*Report, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body := telnyxReportRequest{
		StartTime:  start.UTC().Format(time.RFC3339),
		EndTime:    end.UTC().Format(time.RFC3339),
		ReportName: "dispatch-call-sync",
	}
	if s.connectionID != "" {
		body.Connections = []string{s.connectionID}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportCreate, err)
	}

	report, err := s.doReport(ctx, http.MethodPost, s.baseURL+cdrReportPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportCreate, err)
	}
	if report.ID == "" {
		return nil, fmt.Errorf("%w: response carried no report id", ErrReportCreate)
	}
	return report, nil
}

// GetReport implements ReportClient
func (s *TelnyxService) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.doReport(ctx, http.MethodGet, s.baseURL+cdrReportPath+"/"+url.PathEscape(id), nil)
}

// WaitForReport implements ReportClient
func (s *TelnyxService) WaitForReport(ctx context.Context, id string) (*Report, error) {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		timer.Reset(s.pollInterval)

		report, err := s.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}

		switch report.Status {
		case ReportComplete:
			if report.ReportURL == "" {
				return nil, fmt.Errorf("%w: report %s completed without a download url", ErrReportDownload, id)
			}
			return report, nil
		case ReportFailed:
			return nil, fmt.Errorf("%w: report %s", ErrReportFailed, id)
		}
	}
	return nil, fmt.Errorf("%w: report %s not ready after %d attempts", ErrReportTimeout, id, s.maxAttempts)
}

// Download implements ReportClient
func (s *TelnyxService) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportDownload, err)
	}
	// Report files are usually presigned links on another host; only send the key to our API host
	if strings.HasPrefix(fileURL, s.baseURL) {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrReportDownload, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportDownload, err)
	}
	return data, nil
}

func (s *TelnyxService) doReport(ctx context.Context, method, reqURL string, payload []byte) (*Report, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var envelope telnyxReportEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Report{
		ID:        envelope.Data.ID,
		Status:    normalizeReportStatus(envelope.Data.Status),
		ReportURL: envelope.Data.ReportURL,
	}, nil
}

func normalizeReportStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete", "completed", "success", "done", "finished":
		return ReportComplete
	case "failed", "error", "expired":
		return ReportFailed
	default:
		return ReportPending
	}
}
