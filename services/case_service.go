package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IDRef is the id-only projection of a child record
type IDRef struct {
	ID string `json:"id"`
}

// CaseListItem is a case on the cases screen with the ids of its
// emails, files and reason chains
type CaseListItem struct {
	models.Case
	Emails       []IDRef `json:"emails"`
	Files        []IDRef `json:"files"`
	ReasonChains []IDRef `json:"reasonChains"`
}

// CaseService reads and updates cases
type CaseService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewCaseService(db *gorm.DB) *CaseService {
	return &CaseService{DB: db, now: time.Now}
}

// ListCases returns cases by most recent activity. An empty status lists all.
func (s *CaseService) ListCases(ctx context.Context, status string) ([]CaseListItem, error) {
	if status != "" && !models.IsValidCaseStatus(status) {
		return nil, NewValidationError("Invalid status. Must be one of: %s", strings.Join(models.ValidCaseStatuses, ", "))
	}

	idsOnly := func(db *gorm.DB) *gorm.DB { return db.Select("id", "case_id") }

	var cases []models.Case
	query := s.DB.WithContext(ctx).
		Preload("Emails", idsOnly).
		Preload("Files", idsOnly).
		Preload("ReasonChains", idsOnly).
		Order("last_activity DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&cases).Error; err != nil {
		return nil, persistenceError("fetch cases", err)
	}

	items := make([]CaseListItem, 0, len(cases))
	for _, c := range cases {
		item := CaseListItem{
			Case:         c,
			Emails:       make([]IDRef, 0, len(c.Emails)),
			Files:        make([]IDRef, 0, len(c.Files)),
			ReasonChains: make([]IDRef, 0, len(c.ReasonChains)),
		}
		for _, e := range c.Emails {
			item.Emails = append(item.Emails, IDRef{ID: e.ID})
		}
		for _, f := range c.Files {
			item.Files = append(item.Files, IDRef{ID: f.ID})
		}
		for _, r := range c.ReasonChains {
			item.ReasonChains = append(item.ReasonChains, IDRef{ID: r.ID})
		}
		item.Case.Emails, item.Case.Files, item.Case.ReasonChains = nil, nil, nil
		items = append(items, item)
	}
	return items, nil
}

// GetCase loads a case with its communications, files and reason chains,
// each newest first
func (s *CaseService) GetCase(ctx context.Context, id string) (*models.Case, error) {
	newest := func(column string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB { return db.Order(column + " DESC") }
	}

	if !isID(id) {
		return nil, &NotFoundError{Resource: "Case", ID: id}
	}

	var lawCase models.Case
	err := s.DB.WithContext(ctx).
		Preload("Emails", newest("created_at")).
		Preload("Files", newest("uploaded_at")).
		Preload("TextMessages", newest("created_at")).
		Preload("PhoneCalls", newest("created_at")).
		Preload("ReasonChains", newest("timestamp")).
		First(&lawCase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Case", ID: id}
		}
		return nil, persistenceError("fetch case", err)
	}
	return &lawCase, nil
}

// UpdateCaseStatus validates and applies a status change and touches lastActivity
func (s *CaseService) UpdateCaseStatus(ctx context.Context, id, status string) (*models.Case, error) {
	if status == "" {
		return nil, NewValidationError("Status is required")
	}
	if !models.IsValidCaseStatus(status) {
		return nil, NewValidationError("Invalid status. Must be one of: %s", strings.Join(models.ValidCaseStatuses, ", "))
	}

	if err := ensureCaseExists(ctx, s.DB, id); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Model(&models.Case{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"last_activity": s.now(),
	}).Error
	if err != nil {
		return nil, persistenceError("update case", err)
	}

	logging.L().Info("Case status updated", zap.String("case_id", id), zap.String("status", status))
	return s.GetCase(ctx, id)
}

// touchCase records activity on a case inside the caller's transaction
func touchCase(tx *gorm.DB, caseID string, at time.Time) error {
	if err := tx.Model(&models.Case{}).Where("id = ?", caseID).Update("last_activity", at).Error; err != nil {
		return persistenceError("update case activity", err)
	}
	return nil
}
