package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dispatch_crm_go/config"
	"dispatch_crm_go/models"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/telephony"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockCallSyncer struct {
	mock.Mock
}

func (m *MockCallSyncer) Sync(ctx context.Context) (*services.SyncResult, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*services.SyncResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func withCallSync(t *testing.T, s *MockCallSyncer) {
	t.Helper()
	CallSync = s
	t.Cleanup(func() { CallSync = nil })
}

func TestLogCallHandler(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	lead, err := services.CreateLead(database, services.LeadInput{CompanyName: "Lone Star Freight", PhoneNumber: "2145550100"})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodPost, "/api/calls", map[string]interface{}{"phoneNumber": "+1 214-555-0100", "durationSeconds": 65})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var entry models.CallLog
	decode(t, rec, &entry)
	require.NotNil(t, entry.LeadID)
	assert.Equal(t, lead.ID, *entry.LeadID)
	assert.Equal(t, services.DefaultManualCallNote, entry.Notes)

	rec = doJSON(e, http.MethodPost, "/api/calls", map[string]interface{}{"durationSeconds": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/calls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"companyName":"Lone Star Freight"`)

	rec = doJSON(e, http.MethodGet, "/api/calls?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncCallsHandler(t *testing.T) {
	setupTestDB(t)
	e := newTestServer(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/calls/sync", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	syncer := new(MockCallSyncer)
	syncer.On("Sync", mock.Anything).Return(&services.SyncResult{ReportID: "rep_1", Rows: 5, Inserted: 3, Skipped: 1, Duplicates: 1}, nil).Once()
	withCallSync(t, syncer)

	rec = doJSON(e, http.MethodPost, "/api/calls/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reportId":"rep_1","rows":5,"inserted":3,"skipped":1,"duplicates":1}`, rec.Body.String())
	syncer.AssertExpectations(t)
}

func TestSyncCallsHandler_ProviderErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{telephony.ErrReportTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("%w: boom", telephony.ErrReportFailed), http.StatusBadGateway},
		{&telephony.APIError{StatusCode: 401, Body: "unauthorized"}, http.StatusBadGateway},
		{telephony.ErrNotConfigured, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			setupTestDB(t)
			e := newTestServer(t, nil)
			syncer := new(MockCallSyncer)
			syncer.On("Sync", mock.Anything).Return(nil, tt.err)
			withCallSync(t, syncer)

			rec := doJSON(e, http.MethodPost, "/api/calls/sync", nil)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestImportCallReportHandler(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	_, err := services.CreateLead(database, services.LeadInput{CompanyName: "Lone Star Freight", PhoneNumber: "214-555-0100"})
	require.NoError(t, err)

	report := []byte("From,To,Start Time,Duration\n" +
		"+13125550000,+12145550100,2024-03-09T14:00:00Z,95\n" +
		"+13125550000,+15555550000,2024-03-09T15:00:00Z,10\n")

	rec := doMultipart(t, e, "/api/calls/import", nil, "cdr.csv", report)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"rows":2,"inserted":1,"skipped":1,"duplicates":0}`, rec.Body.String())

	rec = doMultipart(t, e, "/api/calls/import", nil, "cdr.csv", report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":2,"inserted":0,"skipped":1,"duplicates":1}`, rec.Body.String())

	rec = doMultipart(t, e, "/api/calls/import", nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDialHandler(t *testing.T) {
	setupTestDB(t)
	e := newTestServer(t, &config.Config{DeskPhoneHost: "192.168.1.50"})

	rec := doJSON(e, http.MethodGet, "/api/calls/dial?number=(214)%20555-0100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DialResponse
	decode(t, rec, &resp)
	assert.Equal(t, "+12145550100", resp.E164)
	assert.Equal(t, "tel:+12145550100", resp.TelURI)
	assert.Equal(t, "http://192.168.1.50/servlet?key=number=12145550100&outgoing_uri=", resp.DeskPhoneURL)

	rec = doJSON(e, http.MethodGet, "/api/calls/dial?number=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSoftphoneHandler(t *testing.T) {
	setupTestDB(t)

	e := newTestServer(t, &config.Config{SIPUsername: "desk1", SIPPassword: "secret", SIPDisplayName: "Dana"})
	rec := doJSON(e, http.MethodGet, "/api/softphone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"configured":true,"username":"desk1","displayName":"Dana","autoRecord":false}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret")

	e = newTestServer(t, &config.Config{SIPDisplayName: "Dispatcher"})
	rec = doJSON(e, http.MethodGet, "/api/softphone", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SoftphoneResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Configured)
	assert.Equal(t, telephony.ErrMissingCredentials.Error(), resp.Error)
}

func TestImportCallReportHandler_ReportsCommittedRowsOnFailure(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	_, err := services.CreateLead(database, services.LeadInput{CompanyName: "Lone Star Freight", PhoneNumber: "214-555-0100"})
	require.NoError(t, err)

	// Let the first call log through, then fail every later insert
	creates := 0
	require.NoError(t, database.Callback().Create().Before("gorm:create").Register("fail_after_first", func(tx *gorm.DB) {
		creates++
		if creates > 1 {
			tx.AddError(errors.New("disk full"))
		}
	}))

	report := []byte("From,To,Start Time,Duration\n" +
		"+13125550000,+12145550100,2024-03-09T14:00:00Z,95\n" +
		"+13125550000,+12145550100,2024-03-09T15:00:00Z,30\n")

	rec := doMultipart(t, e, "/api/calls/import", nil, "cdr.csv", report)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"rows":2,"inserted":1,"skipped":0,"duplicates":0,"error":"Call report import stopped partway"}`, rec.Body.String())

	var stored int64
	require.NoError(t, database.Model(&models.CallLog{}).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}
