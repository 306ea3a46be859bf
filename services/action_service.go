package services

import (
	"context"
	"errors"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActionView is a ReasonChain as shown on the agent actions screen
type ActionView struct {
	ID          string             `json:"id"`
	CaseID      string             `json:"caseId"`
	CaseName    string             `json:"caseName"`
	ActionType  string             `json:"actionType"`
	Description string             `json:"description"`
	SuggestedBy string             `json:"suggestedBy"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	Reasoning   string             `json:"reasoning"`
	Impact      string             `json:"impact"`
	Confidence  *float64           `json:"confidence"`
	Case        models.CaseSummary `json:"case"`
}

// NewActionView projects a ReasonChain with its preloaded case
func NewActionView(chain models.ReasonChain) ActionView {
	view := ActionView{
		ID:          chain.ID,
		CaseID:      chain.CaseID,
		ActionType:  chain.Action,
		Description: chain.Action,
		SuggestedBy: chain.AgentType,
		Status:      chain.Status,
		CreatedAt:   chain.Timestamp,
		Reasoning:   chain.Reasoning,
		Impact:      chain.Impact,
		Confidence:  chain.Confidence,
	}
	if chain.Case != nil {
		view.CaseName = chain.Case.DisplayName()
		view.Case = chain.Case.Summary()
	}
	return view
}

// ActionService serves the approval workflow over ReasonChain records
type ActionService struct {
	DB *gorm.DB
}

func NewActionService(db *gorm.DB) *ActionService {
	return &ActionService{DB: db}
}

// ListActions returns every ReasonChain newest first with its case summary
func (s *ActionService) ListActions(ctx context.Context) ([]ActionView, error) {
	chains, err := s.recentChains(ctx, 0)
	if err != nil {
		return nil, err
	}

	views := make([]ActionView, 0, len(chains))
	for _, chain := range chains {
		views = append(views, NewActionView(chain))
	}
	return views, nil
}

// UpdateActionStatus sets approved, rejected or pending. Repeating the
// current status is a no-op success.
func (s *ActionService) UpdateActionStatus(ctx context.Context, id, status string) (*ActionView, error) {
	if !models.IsValidReasonChainStatus(status) {
		return nil, NewValidationError("Invalid status. Must be 'pending', 'approved', or 'rejected'")
	}

	chain, err := s.findChain(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&models.ReasonChain{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, persistenceError("update action", err)
	}
	chain.Status = status

	logging.L().Info("Action status updated",
		zap.String("reason_chain_id", id),
		zap.String("case_id", chain.CaseID),
		zap.String("status", status))

	view := NewActionView(*chain)
	return &view, nil
}

func (s *ActionService) findChain(ctx context.Context, id string) (*models.ReasonChain, error) {
	if !isID(id) {
		return nil, &NotFoundError{Resource: "Action", ID: id}
	}

	var chain models.ReasonChain
	err := s.DB.WithContext(ctx).
		Preload("Case", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "client_name", "case_type")
		}).
		First(&chain, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Action", ID: id}
		}
		return nil, persistenceError("fetch action", err)
	}
	return &chain, nil
}

// recentChains loads ReasonChains with their case, newest first. limit <= 0 means all.
func (s *ActionService) recentChains(ctx context.Context, limit int) ([]models.ReasonChain, error) {
	chains := []models.ReasonChain{}
	query := s.DB.WithContext(ctx).
		Preload("Case", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "client_name", "case_type")
		}).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&chains).Error; err != nil {
		return nil, persistenceError("fetch actions", err)
	}
	return chains, nil
}
