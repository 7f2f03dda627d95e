package services

import (
	"fmt"
	"html"
	"strings"

	"dispatch_crm_go/config"
	"dispatch_crm_go/logger"
	"dispatch_crm_go/templates/documents"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an email message
type Email struct {
	To          []string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []EmailAttachment
}

// EmailAttachment is a file sent with an email
type EmailAttachment struct {
	Filename string
	Content  []byte
}

// Mailer delivers emails
type Mailer interface {
	Send(email *Email) error
}

// ResendMailer sends through the Resend API, or only logs when test mode is on
type ResendMailer struct {
	cfg *config.Config
}

// NewResendMailer creates a mailer from configuration
func NewResendMailer(cfg *config.Config) *ResendMailer {
	return &ResendMailer{cfg: cfg}
}

// Send implements Mailer
func (m *ResendMailer) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	if m.cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	if m.cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.EmailFromName, m.cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	sent, err := resend.NewClient(m.cfg.ResendAPIKey).Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logger.L().Info("Email sent via Resend", zap.String("id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmail records an email that test mode kept from being sent
func logEmail(email *Email) {
	names := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		names = append(names, a.Filename)
	}
	logger.L().Info("Email logged (test mode, not sent)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", truncate(email.TextBody, 500)),
		zap.Strings("attachments", names),
	)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// BuildRateConfirmationEmail addresses a rate confirmation to the carrier with the PDF attached
func BuildRateConfirmationEmail(to string, doc *documents.RateConfirmation, pdf []byte) *Email {
	subject := fmt.Sprintf("Rate Confirmation %s - %s", doc.ReferenceNumber, doc.Route())

	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n", doc.CarrierName)
	fmt.Fprintf(&text, "Please find attached the rate confirmation for load %s (%s).\n", doc.ReferenceNumber, doc.Route())
	fmt.Fprintf(&text, "Agreed rate: %s\n\n", documents.Money(doc.Rate))
	text.WriteString("Sign and return at your earliest convenience.\n\n")
	fmt.Fprintf(&text, "%s\n%s\n", doc.DispatcherName, doc.BrokerName)

	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(text.String()), "\n", "<br>") + "</p>"

	return &Email{
		To:       []string{to},
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: htmlBody,
		Attachments: []EmailAttachment{{
			Filename: fmt.Sprintf("rate-confirmation-%s.pdf", doc.ReferenceNumber),
			Content:  pdf,
		}},
	}
}
