package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"
	"case_flow_app_go/services/orchestrator"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// AnalysisActionLabel is the action recorded on every analysis ReasonChain
	AnalysisActionLabel = "AI Case Analysis"
	// AnalysisConfidence is the fixed confidence stored with an analysis
	AnalysisConfidence = 0.85
)

// Analyzer runs a case analysis against the orchestrator
type Analyzer interface {
	Analyze(ctx context.Context, req orchestrator.AnalyzeRequest) (*orchestrator.Result, error)
	Timeout() time.Duration
}

// AnalyzeInput is the client request for one analysis
type AnalyzeInput struct {
	UserRequest string   `json:"userRequest"`
	FileURLs    []string `json:"fileUrls"`
}

// Validate checks the request before anything touches the database
func (in AnalyzeInput) Validate() error {
	if strings.TrimSpace(in.UserRequest) == "" {
		return NewValidationError("userRequest and fileUrls array are required")
	}
	if len(in.FileURLs) == 0 {
		return NewValidationError("userRequest and fileUrls array are required")
	}
	for _, u := range in.FileURLs {
		if strings.TrimSpace(u) == "" {
			return NewValidationError("fileUrls must not contain empty entries")
		}
	}
	return nil
}

// AnalysisOutcome is returned to the client after a successful analysis
type AnalysisOutcome struct {
	Success       bool                   `json:"success"`
	Analysis      map[string]interface{} `json:"analysis"`
	ReasonChainID string                 `json:"reasonChainId"`
	TasksCreated  int                    `json:"tasksCreated"`
	Tasks         []models.AITask        `json:"tasks"`
}

// ErrAnalyzerNotConfigured is returned when no orchestrator client was wired
var ErrAnalyzerNotConfigured = errors.New("analyzer not configured")

// AnalysisService turns orchestrator replies into audit records and tasks
type AnalysisService struct {
	DB       *gorm.DB
	Analyzer Analyzer
	now      func() time.Time
}

func NewAnalysisService(db *gorm.DB, analyzer Analyzer) *AnalysisService {
	return &AnalysisService{DB: db, Analyzer: analyzer, now: time.Now}
}

// Analyze validates the request, calls the orchestrator once and stores the
// ReasonChain, its derived tasks and the case activity in one transaction.
// Validation, lookup, upstream and timeout failures leave no writes behind.
func (s *AnalysisService) Analyze(ctx context.Context, caseID string, in AnalyzeInput) (*AnalysisOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := ensureCaseExists(ctx, s.DB, caseID); err != nil {
		return nil, err
	}
	if s.Analyzer == nil {
		return nil, ErrAnalyzerNotConfigured
	}

	// The timeout inside the analyzer is the only way to abandon the call
	detached := context.WithoutCancel(ctx)

	result, err := s.Analyzer.Analyze(detached, orchestrator.AnalyzeRequest{
		UserRequest: in.UserRequest,
		FileURLs:    in.FileURLs,
		CaseID:      caseID,
	})
	if err != nil {
		return nil, s.upstreamFailure(caseID, err)
	}

	return s.persist(detached, caseID, result)
}

func (s *AnalysisService) upstreamFailure(caseID string, err error) error {
	log := logging.L().With(zap.String("case_id", caseID))

	if errors.Is(err, orchestrator.ErrTimeout) {
		log.Warn("Orchestrator analysis timed out", zap.Duration("timeout", s.Analyzer.Timeout()))
		return &AnalysisTimeoutError{Timeout: s.Analyzer.Timeout().String()}
	}

	var statusErr *orchestrator.StatusError
	if errors.As(err, &statusErr) {
		log.Error("Orchestrator returned an error status",
			zap.Int("status_code", statusErr.StatusCode),
			zap.String("body", statusErr.Body))
		return &UpstreamError{Provider: "orchestrator", StatusCode: statusErr.StatusCode, Err: err}
	}

	log.Error("Orchestrator request failed", zap.Error(err))
	return &UpstreamError{Provider: "orchestrator", Err: err}
}

func (s *AnalysisService) persist(ctx context.Context, caseID string, result *orchestrator.Result) (*AnalysisOutcome, error) {
	agentType := result.AgentType
	if agentType == "" {
		agentType = models.AgentTypeOrchestrator
	}

	document, err := json.Marshal(result.Document)
	if err != nil {
		return nil, persistenceError("encode analysis", err)
	}

	reasoning := result.Response
	if reasoning == "" {
		reasoning = string(document)
	}

	confidence := AnalysisConfidence
	chain := models.ReasonChain{
		CaseID:     caseID,
		AgentType:  agentType,
		Action:     AnalysisActionLabel,
		Reasoning:  reasoning,
		Status:     models.ReasonChainStatusApproved,
		Impact:     models.ImpactHigh,
		Confidence: &confidence,
		Data:       datatypes.JSON(document),
	}

	tasks := make([]models.AITask, 0, len(result.Tasks))

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chain).Error; err != nil {
			return persistenceError("create reason chain", err)
		}

		for _, suggestion := range result.Tasks {
			tasks = append(tasks, taskFromSuggestion(caseID, agentType, chain.ID, suggestion))
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return persistenceError("create analysis tasks", err)
			}
		}

		return touchCase(tx, caseID, s.now())
	})
	if err != nil {
		logging.L().Error("Failed to store case analysis", zap.String("case_id", caseID), zap.Error(err))
		var pErr *PersistenceError
		if !errors.As(err, &pErr) {
			err = persistenceError("store analysis", err)
		}
		return nil, err
	}

	logging.L().Info("Case analysis stored",
		zap.String("case_id", caseID),
		zap.String("reason_chain_id", chain.ID),
		zap.String("agent_type", agentType),
		zap.Int("tasks_created", len(tasks)))

	return &AnalysisOutcome{
		Success:       true,
		Analysis:      result.Document,
		ReasonChainID: chain.ID,
		TasksCreated:  len(tasks),
		Tasks:         tasks,
	}, nil
}

// taskFromSuggestion applies task defaults. Unknown priority or category
// values from the orchestrator fall back to the defaults.
func taskFromSuggestion(caseID, createdBy, reasonChainID string, s orchestrator.TaskSuggestion) models.AITask {
	title := s.Title
	if title == "" {
		title = models.DefaultTaskTitle
	}

	priority := s.Priority
	if !models.IsValidTaskPriority(priority) {
		if priority != "" {
			logging.L().Warn("Unknown task priority from orchestrator", zap.String("priority", priority))
		}
		priority = models.DefaultTaskPriority
	}

	category := s.Category
	if !models.IsValidTaskCategory(category) {
		if category != "" {
			logging.L().Warn("Unknown task category from orchestrator", zap.String("category", category))
		}
		category = models.DefaultTaskCategory
	}

	relatedTo := reasonChainID
	return models.AITask{
		CaseID:        caseID,
		Title:         title,
		Description:   s.Description,
		Priority:      priority,
		Category:      category,
		Status:        models.TaskStatusPending,
		EstimatedTime: s.EstimatedTime,
		Reasoning:     s.Reasoning,
		CreatedBy:     createdBy,
		RelatedTo:     &relatedTo,
	}
}

// ListAnalyses returns the analysis history of a case, newest first
func (s *AnalysisService) ListAnalyses(ctx context.Context, caseID string) ([]models.ReasonChain, error) {
	analyses := []models.ReasonChain{}
	if !isID(caseID) {
		return analyses, nil
	}
	err := s.DB.WithContext(ctx).
		Where("case_id = ? AND agent_type IN ?", caseID, models.AnalysisAgentTypes).
		Order("timestamp DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, persistenceError("fetch analyses", err)
	}
	return analyses, nil
}
