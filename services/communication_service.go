package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"
	"case_flow_app_go/services/sanitize"
	"case_flow_app_go/services/telephony"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Communication types in the feed
const (
	CommunicationTypeEmail = "email"
	CommunicationTypeSMS   = "sms"
)

// CallPlacer starts an outbound call through the telephony provider
type CallPlacer interface {
	MakeCall(ctx context.Context, phoneNumber, message string) (*telephony.CallResponse, error)
}

// SendEmailInput is the body of a case email request
type SendEmailInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	From    string `json:"from"`
}

// SendEmailResult is returned after an email was sent and recorded
type SendEmailResult struct {
	Success bool         `json:"success"`
	EmailID string       `json:"emailId"`
	Message string       `json:"message"`
	Case    *models.Case `json:"case"`
}

// CallInput is the body of a case call request
type CallInput struct {
	PhoneNumber  string `json:"phoneNumber"`
	Message      string `json:"message"`
	StatusUpdate string `json:"statusUpdate"`
}

// CallResult is returned after a call was initiated and recorded
type CallResult struct {
	Success bool         `json:"success"`
	CallSid string       `json:"callSid"`
	Message string       `json:"message"`
	Case    *models.Case `json:"case"`
}

// CommunicationView is one entry of the merged email and SMS feed
type CommunicationView struct {
	ID       string             `json:"id"`
	CaseID   string             `json:"caseId"`
	CaseName string             `json:"caseName"`
	Type     string             `json:"type"`
	Subject  string             `json:"subject"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Date     time.Time          `json:"date"`
	Content  string             `json:"content"`
	Case     models.CaseSummary `json:"case"`
}

// CommunicationService sends emails, places calls and serves the feed
type CommunicationService struct {
	DB     *gorm.DB
	Mailer Mailer
	Caller CallPlacer
	now    func() time.Time
}

func NewCommunicationService(db *gorm.DB, mailer Mailer, caller CallPlacer) *CommunicationService {
	return &CommunicationService{DB: db, Mailer: mailer, Caller: caller, now: time.Now}
}

// SendEmail delivers an email for a case, then records it and the case
// activity. A provider failure records nothing.
func (s *CommunicationService) SendEmail(ctx context.Context, caseID string, in SendEmailInput) (*SendEmailResult, error) {
	in.To = sanitize.String(in.To)
	in.Subject = sanitize.String(in.Subject)
	in.Content = sanitize.String(in.Content)
	in.From = sanitize.String(in.From)
	if strings.TrimSpace(in.To) == "" || strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, NewValidationError("to, subject, and content are required")
	}
	if err := ensureCaseExists(ctx, s.DB, caseID); err != nil {
		return nil, err
	}

	email := &Email{
		From:     strings.TrimSpace(in.From),
		To:       []string{strings.TrimSpace(in.To)},
		Subject:  in.Subject,
		HTMLBody: RenderEmailHTML(in.Content),
		TextBody: in.Content,
	}
	emailID, err := s.Mailer.Send(ctx, email)
	if err != nil {
		logging.L().Error("Failed to send case email", zap.String("case_id", caseID), zap.Error(err))
		return nil, &UpstreamError{Provider: "email", Err: err}
	}

	// The email is gone; record it even if the client hung up
	persistCtx := context.WithoutCancel(ctx)
	record := models.Email{
		CaseID:  caseID,
		From:    email.From,
		To:      email.To[0],
		Subject: in.Subject,
		Content: in.Content,
	}
	err = s.DB.WithContext(persistCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return persistenceError("save email", err)
		}
		return touchCase(tx, caseID, s.now())
	})
	if err != nil {
		logging.L().Error("Email sent but not recorded", zap.String("case_id", caseID), zap.String("email_id", emailID), zap.Error(err))
		return nil, err
	}

	updated, err := NewCaseService(s.DB).GetCase(persistCtx, caseID)
	if err != nil {
		return nil, err
	}

	return &SendEmailResult{
		Success: true,
		EmailID: emailID,
		Message: "Email sent successfully",
		Case:    updated,
	}, nil
}

// MakeCall places a call for a case, then records it together with the
// optional case status update. A provider failure records nothing.
func (s *CommunicationService) MakeCall(ctx context.Context, caseID string, in CallInput) (*CallResult, error) {
	in.PhoneNumber = sanitize.String(in.PhoneNumber)
	in.Message = sanitize.String(in.Message)
	if strings.TrimSpace(in.PhoneNumber) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, NewValidationError("phoneNumber and message are required")
	}
	if in.StatusUpdate != "" && !models.IsValidCaseStatus(in.StatusUpdate) {
		return nil, NewValidationError("Invalid status. Must be one of: %s", strings.Join(models.ValidCaseStatuses, ", "))
	}

	if !isID(caseID) {
		return nil, &NotFoundError{Resource: "Case", ID: caseID}
	}

	var lawCase models.Case
	if err := s.DB.WithContext(ctx).Select("id", "status").First(&lawCase, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Case", ID: caseID}
		}
		return nil, persistenceError("load case", err)
	}

	resp, err := s.Caller.MakeCall(ctx, in.PhoneNumber, in.Message)
	if err != nil {
		logging.L().Error("Failed to initiate call", zap.String("case_id", caseID), zap.Error(err))
		upstream := &UpstreamError{Provider: "telephony", Err: err}
		var statusErr *telephony.StatusError
		if errors.As(err, &statusErr) {
			upstream.StatusCode = statusErr.StatusCode
		}
		return nil, upstream
	}

	statusBefore := lawCase.Status
	statusAfter := statusBefore
	if in.StatusUpdate != "" {
		statusAfter = in.StatusUpdate
	}

	call := models.PhoneCall{
		CaseID:           caseID,
		PhoneNumber:      in.PhoneNumber,
		Message:          in.Message,
		Status:           models.PhoneCallStatusInitiated,
		StatusBeforeCall: &statusBefore,
		StatusAfterCall:  &statusAfter,
	}
	if resp.CallSid != "" {
		sid := resp.CallSid
		call.CallSid = &sid
	}

	persistCtx := context.WithoutCancel(ctx)
	err = s.DB.WithContext(persistCtx).Transaction(func(tx *gorm.DB) error {
		if in.StatusUpdate != "" {
			if err := tx.Model(&models.Case{}).Where("id = ?", caseID).Update("status", in.StatusUpdate).Error; err != nil {
				return persistenceError("update case status", err)
			}
		}
		if err := tx.Create(&call).Error; err != nil {
			return persistenceError("save phone call", err)
		}
		return touchCase(tx, caseID, s.now())
	})
	if err != nil {
		logging.L().Error("Call placed but not recorded", zap.String("case_id", caseID), zap.String("call_sid", resp.CallSid), zap.Error(err))
		return nil, err
	}

	logging.L().Info("Call initiated",
		zap.String("case_id", caseID),
		zap.String("call_sid", resp.CallSid),
		zap.String("status_before", statusBefore),
		zap.String("status_after", statusAfter))

	updated, err := NewCaseService(s.DB).GetCase(persistCtx, caseID)
	if err != nil {
		return nil, err
	}

	return &CallResult{
		Success: true,
		CallSid: resp.CallSid,
		Message: "Call initiated successfully",
		Case:    updated,
	}, nil
}

// ListCommunications merges emails and text messages of all cases, newest first
func (s *CommunicationService) ListCommunications(ctx context.Context) ([]CommunicationView, error) {
	withCase := func(db *gorm.DB) *gorm.DB { return db.Select("id", "client_name", "case_type") }

	var (
		emails   []models.Email
		messages []models.TextMessage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.DB.WithContext(gctx).Preload("Case", withCase).Order("created_at DESC").Find(&emails).Error; err != nil {
			return persistenceError("fetch emails", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.DB.WithContext(gctx).Preload("Case", withCase).Order("created_at DESC").Find(&messages).Error; err != nil {
			return persistenceError("fetch text messages", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := make([]CommunicationView, 0, len(emails)+len(messages))
	for _, e := range emails {
		view := CommunicationView{
			ID:      e.ID,
			CaseID:  e.CaseID,
			Type:    CommunicationTypeEmail,
			Subject: e.Subject,
			From:    e.From,
			To:      e.To,
			Date:    e.CreatedAt,
			Content: e.Content,
		}
		if e.Case != nil {
			view.CaseName = e.Case.DisplayName()
			view.Case = e.Case.Summary()
		}
		feed = append(feed, view)
	}
	for _, m := range messages {
		view := CommunicationView{
			ID:      m.ID,
			CaseID:  m.CaseID,
			Type:    CommunicationTypeSMS,
			Subject: fmt.Sprintf("SMS: %s → %s", m.From, m.To),
			From:    m.From,
			To:      m.To,
			Date:    m.CreatedAt,
			Content: m.Text,
		}
		if m.Case != nil {
			view.CaseName = m.Case.DisplayName()
			view.Case = m.Case.Summary()
		}
		feed = append(feed, view)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	return feed, nil
}
