package services

import (
	"testing"
	"time"

	"dispatch_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCall_ResolvesLeadByPhone(t *testing.T) {
	db := setupTestDB(t)
	lead := createTestLead(t, db, "Lone Star Freight", "2145550100")

	entry, err := LogCall(db, CallLogInput{PhoneNumber: "+1 (214) 555-0100", DurationSeconds: 42})
	require.NoError(t, err)

	require.NotNil(t, entry.LeadID)
	assert.Equal(t, lead.ID, *entry.LeadID)
	assert.Equal(t, DefaultManualCallNote, entry.Notes)
	assert.Equal(t, "Completed", entry.Outcome)
	assert.Equal(t, "outbound", entry.Direction)
	assert.Equal(t, models.CallSourceManual, entry.Source)

	stored := reloadLead(t, db, lead.ID)
	require.NotNil(t, stored.LastCallTime)
	assert.True(t, stored.LastCallTime.Equal(entry.Timestamp))
}

func TestLogCall_UnmatchedStaysUnlinked(t *testing.T) {
	db := setupTestDB(t)
	createTestLead(t, db, "Lone Star Freight", "2145550100")

	entry, err := LogCall(db, CallLogInput{PhoneNumber: "3125550000", Note: "wrong desk", Outcome: "No Answer"})
	require.NoError(t, err)
	assert.Nil(t, entry.LeadID)
	assert.Equal(t, "wrong desk", entry.Notes)
	assert.Equal(t, "No Answer", entry.Outcome)
}

func TestLogCall_ExplicitLead(t *testing.T) {
	db := setupTestDB(t)
	lead := createTestLead(t, db, "Lone Star Freight", "2145550100")

	entry, err := LogCall(db, CallLogInput{LeadID: &lead.ID})
	require.NoError(t, err)
	assert.Equal(t, "2145550100", entry.PhoneNumber)

	missing := "missing"
	_, err = LogCall(db, CallLogInput{LeadID: &missing, PhoneNumber: "2145550100"})
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLogCall_LastCallOnlyMovesForward(t *testing.T) {
	db := setupTestDB(t)
	lead := createTestLead(t, db, "Lone Star Freight", "2145550100")
	recent := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	setLastCall(t, db, lead.ID, recent)

	older := recent.Add(-24 * time.Hour)
	_, err := LogCall(db, CallLogInput{LeadID: &lead.ID, Timestamp: &older})
	require.NoError(t, err)
	stored := reloadLead(t, db, lead.ID)
	assert.True(t, stored.LastCallTime.Equal(recent))

	newer := recent.Add(time.Hour)
	_, err = LogCall(db, CallLogInput{LeadID: &lead.ID, Timestamp: &newer})
	require.NoError(t, err)
	stored = reloadLead(t, db, lead.ID)
	assert.True(t, stored.LastCallTime.Equal(newer))
}

func TestListCallHistory(t *testing.T) {
	db := setupTestDB(t)
	createTestLead(t, db, "Lone Star Freight", "2145550100")

	first := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	_, err := LogCall(db, CallLogInput{PhoneNumber: "2145550100", Timestamp: &first})
	require.NoError(t, err)
	_, err = LogCall(db, CallLogInput{PhoneNumber: "9995550000", Timestamp: &second})
	require.NoError(t, err)

	logs, err := ListCallHistory(db, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "9995550000", logs[0].PhoneNumber)
	assert.Empty(t, logs[0].CompanyName)
	assert.Equal(t, "Lone Star Freight", logs[1].CompanyName)

	logs, err = ListCallHistory(db, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestCallLogExists(t *testing.T) {
	db := setupTestDB(t)
	lead := createTestLead(t, db, "Lone Star Freight", "2145550100")
	ts := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

	exists, err := CallLogExists(db, lead.ID, ts)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = LogCall(db, CallLogInput{LeadID: &lead.ID, Timestamp: &ts})
	require.NoError(t, err)

	exists, err = CallLogExists(db, lead.ID, ts.In(time.FixedZone("CST", -6*3600)))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = CallLogExists(db, lead.ID, ts.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, exists)
}
