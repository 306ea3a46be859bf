package services

import (
	"context"
	"fmt"
	"strings"

	"case_flow_app_go/config"
	"case_flow_app_go/logging"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an outbound email message
type Email struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers one email and returns the provider message id
type Mailer interface {
	Send(ctx context.Context, email *Email) (string, error)
}

// ResendMailer sends through the Resend API. In test mode emails are
// logged and never leave the process.
type ResendMailer struct {
	cfg    *config.Config
	client *resend.Client
}

func NewResendMailer(cfg *config.Config) *ResendMailer {
	m := &ResendMailer{cfg: cfg}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// DefaultFrom is the sender used when a request does not name one
func (m *ResendMailer) DefaultFrom() string {
	if m.cfg.EmailFromName == "" {
		return m.cfg.EmailFrom
	}
	return fmt.Sprintf("%s <%s>", m.cfg.EmailFromName, m.cfg.EmailFrom)
}

// Send sends an email using Resend API
func (m *ResendMailer) Send(ctx context.Context, email *Email) (string, error) {
	if email.From == "" {
		email.From = m.DefaultFrom()
	}

	if m.cfg.EmailTestMode {
		logEmail(email)
		return "test-" + uuid.New().String(), nil
	}

	if m.client == nil {
		return "", fmt.Errorf("RESEND_API_KEY not configured")
	}

	params := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return "", fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logging.L().Info("Email sent via Resend", zap.String("email_id", sent.Id), zap.Strings("to", email.To))
	return sent.Id, nil
}

// logEmail logs email details in test mode
func logEmail(email *Email) {
	logging.L().Info("Email logged (test mode, not sent)",
		zap.String("from", email.From),
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", truncate(email.TextBody, 500)))
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

var emailPolicy = bluemonday.UGCPolicy()

// RenderEmailHTML sanitizes user-written content and keeps its line breaks
func RenderEmailHTML(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(emailPolicy.Sanitize(normalized), "\n", "<br>")
}
