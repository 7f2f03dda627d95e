package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch_crm_go/logger"
	"dispatch_crm_go/models"
	"dispatch_crm_go/templates/documents"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RateConfirmationSettings are the broker details printed on every confirmation
type RateConfirmationSettings struct {
	BrokerName     string
	DispatcherName string
}

// LoadReference is the short order number printed on documents, e.g. LD-1A2B3C
func LoadReference(loadID string) string {
	id := strings.ToUpper(strings.ReplaceAll(loadID, "-", ""))
	if len(id) > 6 {
		id = id[:6]
	}
	return "LD-" + id
}

// BuildRateConfirmation assembles the document for a load and the carrier lead hauling it.
// The load's own stops are used when it has any; otherwise pickup and delivery come from its dates.
func BuildRateConfirmation(db *gorm.DB, loadID, carrierLeadID string, settings RateConfirmationSettings) (*documents.RateConfirmation, error) {
	load, err := GetLoad(db, loadID)
	if err != nil {
		return nil, err
	}
	carrier, err := GetLead(db, carrierLeadID)
	if err != nil {
		return nil, err
	}

	var stops []models.Stop
	if err := db.Where("load_id = ?", loadID).Order("stop_sequence ASC").Find(&stops).Error; err != nil {
		return nil, fmt.Errorf("failed to load stops: %w", err)
	}

	doc := &documents.RateConfirmation{
		ReferenceNumber: LoadReference(load.ID),
		IssuedAt:        time.Now(),
		BrokerName:      settings.BrokerName,
		DispatcherName:  settings.DispatcherName,
		CarrierName:     carrier.CompanyName,
		CarrierMC:       carrier.MCNumber,
		CarrierDOT:      carrier.DOTNumber,
		CarrierPhone:    carrier.PhoneNumber,
		CarrierEmail:    carrier.Email,
		Rate:            load.Rate,
		Commodity:       load.Commodity,
		WeightLbs:       load.WeightLbs,
		DistanceMiles:   load.DistanceMiles,
		Notes:           load.Notes,
	}

	for _, s := range stops {
		doc.Stops = append(doc.Stops, documents.RateConfirmationStop{
			Type:      s.Type,
			Name:      s.LocationName,
			Address:   s.Address,
			Scheduled: s.ScheduledTime,
		})
	}
	if len(doc.Stops) == 0 {
		doc.Stops = []documents.RateConfirmationStop{
			{Type: models.StopTypePickup, Name: load.CustomerName, Scheduled: load.PickupDate},
			{Type: models.StopTypeDelivery, Scheduled: load.DeliveryDate},
		}
	}
	return doc, nil
}

// RateConfirmationResult is a generated and stored confirmation
type RateConfirmationResult struct {
	Document  *models.GeneratedDocument   `json:"document"`
	Data      *documents.RateConfirmation `json:"-"`
	PDF       []byte                      `json:"-"`
	EmailedTo string                      `json:"emailedTo,omitempty"`
}

// DocumentService renders, stores and sends generated documents
type DocumentService struct {
	db       *gorm.DB
	renderer PDFRenderer
	storage  StorageProvider
	mailer   Mailer
	settings RateConfirmationSettings
}

// NewDocumentService wires the document pipeline
func NewDocumentService(db *gorm.DB, renderer PDFRenderer, storage StorageProvider, mailer Mailer, settings RateConfirmationSettings) *DocumentService {
	return &DocumentService{db: db, renderer: renderer, storage: storage, mailer: mailer, settings: settings}
}

// GenerateRateConfirmationPDF renders the confirmation, prints it to PDF, stores
// it and records the file
func (s *DocumentService) GenerateRateConfirmationPDF(ctx context.Context, loadID, carrierLeadID string) (*RateConfirmationResult, error) {
	data, err := BuildRateConfirmation(s.db, loadID, carrierLeadID, s.settings)
	if err != nil {
		return nil, err
	}

	html, err := documents.RenderRateConfirmation(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render rate confirmation: %w", err)
	}

	pdf, err := s.renderer.RenderPDF(ctx, html, DefaultPDFOptions())
	if err != nil {
		return nil, err
	}

	stored, err := s.storage.Put(ctx, RateConfirmationKey(loadID), pdf, "application/pdf")
	if err != nil {
		return nil, err
	}

	lID, cID := loadID, carrierLeadID
	doc := &models.GeneratedDocument{
		Kind:       models.DocumentKindRateConfirmation,
		LoadID:     &lID,
		LeadID:     &cID,
		FileName:   fmt.Sprintf("rate-confirmation-%s.pdf", data.ReferenceNumber),
		StorageKey: stored.Key,
		URL:        stored.URL,
		FileSize:   stored.FileSize,
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to record generated document: %w", err)
	}

	logger.L().Info("Rate confirmation generated",
		zap.String("load_id", loadID),
		zap.String("carrier_lead_id", carrierLeadID),
		zap.String("key", stored.Key),
		zap.String("storage", s.storage.Name()),
	)
	return &RateConfirmationResult{Document: doc, Data: data, PDF: pdf}, nil
}

// EmailRateConfirmation generates the confirmation and sends it to the carrier.
// An empty address falls back to the carrier lead's email.
func (s *DocumentService) EmailRateConfirmation(ctx context.Context, loadID, carrierLeadID, to string) (*RateConfirmationResult, error) {
	result, err := s.GenerateRateConfirmationPDF(ctx, loadID, carrierLeadID)
	if err != nil {
		return nil, err
	}

	to = strings.TrimSpace(to)
	if to == "" {
		to = result.Data.CarrierEmail
	}
	if to == "" {
		return result, ErrNoRecipient
	}

	if err := s.mailer.Send(BuildRateConfirmationEmail(to, result.Data, result.PDF)); err != nil {
		return result, err
	}
	result.EmailedTo = to
	return result, nil
}

// ListGeneratedDocuments returns the documents produced for a load
func ListGeneratedDocuments(db *gorm.DB, loadID string) ([]models.GeneratedDocument, error) {
	var docs []models.GeneratedDocument
	if err := db.Where("load_id = ?", loadID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
