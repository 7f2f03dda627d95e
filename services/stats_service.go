package services

import (
	"fmt"
	"math"
	"time"

	"dispatch_crm_go/models"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// Activity labels for the day's call volume
const (
	ActivityHigh     = "High"
	ActivityModerate = "Moderate"
	ActivityLow      = "Low"
)

// DashboardStats is the dispatcher's overview
type DashboardStats struct {
	TotalLeads      int64            `json:"totalLeads"`
	LeadsInQueue    int64            `json:"leadsInQueue"`
	InterestedLeads int64            `json:"interestedLeads"`
	RetryQueue      int64            `json:"retryQueue"`
	DNCCount        int64            `json:"dncCount"`
	OnboardedCount  int64            `json:"onboardedCount"`
	StatusCounts    map[string]int64 `json:"statusCounts"`

	TotalCallsToday int64            `json:"totalCallsToday"`
	AvgTalkTime     int              `json:"avgTalkTime"` // seconds
	OutcomesToday   map[string]int64 `json:"outcomesToday"`
	Activity        string           `json:"activity"`

	PipelineSummary
}

// ActivityLevel labels a call count: High above 50, Moderate above 20, else Low
func ActivityLevel(callsToday int64) string {
	switch {
	case callsToday > 50:
		return ActivityHigh
	case callsToday > 20:
		return ActivityModerate
	default:
		return ActivityLow
	}
}

type groupCount struct {
	Label string
	Count int64
}

// GetDashboardStats computes lead, call and pipeline figures. "Today" starts at midnight UTC.
func GetDashboardStats(db *gorm.DB, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		StatusCounts:  map[string]int64{},
		OutcomesToday: map[string]int64{},
	}

	statusQuery, args, err := sq.Select("status AS label", "COUNT(*) AS count").
		From(models.Lead{}.TableName()).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, err
	}
	var statuses []groupCount
	if err := db.Raw(statusQuery, args...).Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}
	for _, s := range statuses {
		stats.StatusCounts[s.Label] = s.Count
		stats.TotalLeads += s.Count
	}
	stats.InterestedLeads = stats.StatusCounts[string(models.LeadStatusInterested)]
	stats.RetryQueue = stats.StatusCounts[string(models.LeadStatusRetry)]
	stats.DNCCount = stats.StatusCounts[string(models.LeadStatusDNC)]
	stats.OnboardedCount = stats.StatusCounts[string(models.LeadStatusOnboarded)]
	for _, status := range models.QueueStatuses {
		stats.LeadsInQueue += stats.StatusCounts[string(status)]
	}

	y, m, d := now.UTC().Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	callsQuery, args, err := sq.Select("COUNT(*) AS calls", "COALESCE(SUM(duration_seconds), 0) AS seconds").
		From(models.CallLog{}.TableName()).
		Where(sq.GtOrEq{"timestamp": startOfDay}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var calls struct {
		Calls   int64
		Seconds int64
	}
	if err := db.Raw(callsQuery, args...).Scan(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's calls: %w", err)
	}
	stats.TotalCallsToday = calls.Calls
	if calls.Calls > 0 {
		stats.AvgTalkTime = int(math.Round(float64(calls.Seconds) / float64(calls.Calls)))
	}
	stats.Activity = ActivityLevel(stats.TotalCallsToday)

	outcomeQuery, args, err := sq.Select("outcome AS label", "COUNT(*) AS count").
		From(models.CallLog{}.TableName()).
		Where(sq.GtOrEq{"timestamp": startOfDay}).
		GroupBy("outcome").
		ToSql()
	if err != nil {
		return nil, err
	}
	var outcomes []groupCount
	if err := db.Raw(outcomeQuery, args...).Scan(&outcomes).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's outcomes: %w", err)
	}
	for _, o := range outcomes {
		stats.OutcomesToday[o.Label] = o.Count
	}

	opps, err := ListOpportunities(db)
	if err != nil {
		return nil, err
	}
	stats.PipelineSummary = SummarizePipeline(opps)
	return stats, nil
}
