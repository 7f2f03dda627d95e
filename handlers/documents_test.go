package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"dispatch_crm_go/models"
	"dispatch_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRenderer struct{}

func (stubRenderer) RenderPDF(ctx context.Context, html string, opts services.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*services.Email
}

func (m *recordingMailer) Send(email *services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func withDocuments(t *testing.T, database *gorm.DB) *recordingMailer {
	t.Helper()
	mailer := &recordingMailer{}
	Documents = services.NewDocumentService(database, stubRenderer{}, services.NewLocalStorage(t.TempDir()), mailer,
		services.RateConfirmationSettings{BrokerName: "Dispatch Solutions", DispatcherName: "Dana"})
	t.Cleanup(func() { Documents = nil })
	return mailer
}

func seedLoadAndCarrier(t *testing.T, database *gorm.DB, email string) (*models.Load, *models.Lead) {
	t.Helper()
	load, err := services.CreateLoad(database, services.LoadInput{CustomerName: "Acme Foods", Rate: 2450})
	require.NoError(t, err)
	carrier, err := services.CreateLead(database, services.LeadInput{CompanyName: "Lone Star Freight", Email: email})
	require.NoError(t, err)
	return load, carrier
}

func TestRateConfirmationHandler_NotConfigured(t *testing.T) {
	setupTestDB(t)
	e := newTestServer(t, nil)

	rec := doJSON(e, http.MethodPost, "/api/loads/abc/rate-confirmation", map[string]string{"carrierLeadId": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateConfirmationHandler_Generate(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	mailer := withDocuments(t, database)
	load, carrier := seedLoadAndCarrier(t, database, "ops@lonestar.test")

	rec := doJSON(e, http.MethodPost, "/api/loads/"+load.ID+"/rate-confirmation", map[string]string{"carrierLeadId": carrier.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result services.RateConfirmationResult
	decode(t, rec, &result)
	require.NotNil(t, result.Document)
	assert.Equal(t, models.DocumentKindRateConfirmation, result.Document.Kind)
	assert.Empty(t, result.EmailedTo)
	assert.Empty(t, mailer.sent)

	rec = doJSON(e, http.MethodGet, "/api/loads/"+load.ID+"/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.GeneratedDocument
	decode(t, rec, &docs)
	assert.Len(t, docs, 1)
}

func TestRateConfirmationHandler_Email(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	mailer := withDocuments(t, database)
	load, carrier := seedLoadAndCarrier(t, database, "ops@lonestar.test")

	rec := doJSON(e, http.MethodPost, "/api/loads/"+load.ID+"/rate-confirmation", map[string]interface{}{"carrierLeadId": carrier.ID, "sendEmail": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"emailedTo":"ops@lonestar.test"`)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ops@lonestar.test"}, mailer.sent[0].To)

	rec = doJSON(e, http.MethodPost, "/api/loads/"+load.ID+"/rate-confirmation", map[string]interface{}{"carrierLeadId": carrier.ID, "emailTo": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "emailTo must be a valid email")
}

func TestRateConfirmationHandler_NoRecipient(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	mailer := withDocuments(t, database)
	load, carrier := seedLoadAndCarrier(t, database, "")

	rec := doJSON(e, http.MethodPost, "/api/loads/"+load.ID+"/rate-confirmation", map[string]interface{}{"carrierLeadId": carrier.ID, "sendEmail": true})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), services.ErrNoRecipient.Error())
	assert.Contains(t, rec.Body.String(), `"document"`)
	assert.Empty(t, mailer.sent)
}

func TestRateConfirmationHandler_MissingRecords(t *testing.T) {
	database := setupTestDB(t)
	e := newTestServer(t, nil)
	withDocuments(t, database)
	load, _ := seedLoadAndCarrier(t, database, "")

	rec := doJSON(e, http.MethodPost, "/api/loads/ghost/rate-confirmation", map[string]string{"carrierLeadId": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/loads/"+load.ID+"/rate-confirmation", map[string]string{"carrierLeadId": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/loads/ghost/documents", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
