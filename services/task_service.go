package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"
	"case_flow_app_go/services/sanitize"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// taskBoardOrder ranks open work first, then priority, then newest
const taskBoardOrder = "CASE status WHEN 'pending' THEN 0 WHEN 'in-progress' THEN 1 WHEN 'completed' THEN 2 ELSE 3 END, " +
	"CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, " +
	"created_at DESC"

// CreateTaskInput is the body of a manual task creation
type CreateTaskInput struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Priority      string  `json:"priority"`
	Category      string  `json:"category"`
	EstimatedTime *string `json:"estimatedTime"`
	Reasoning     *string `json:"reasoning"`
	DueDate       *string `json:"dueDate"`
	CreatedBy     string  `json:"createdBy"`
	RelatedTo     *string `json:"relatedTo"`
}

// UpdateTaskInput is a partial task update. DueDate distinguishes an
// explicit null (clear) from an absent field (keep).
type UpdateTaskInput struct {
	Status   *string         `json:"status"`
	Priority *string         `json:"priority"`
	DueDate  json.RawMessage `json:"dueDate"`
}

// TaskService manages the task board of a case
type TaskService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db, now: time.Now}
}

// ListTasks returns the board for a case in board order
func (s *TaskService) ListTasks(ctx context.Context, caseID string) ([]models.AITask, error) {
	if err := ensureCaseExists(ctx, s.DB, caseID); err != nil {
		return nil, err
	}

	tasks := []models.AITask{}
	if err := s.DB.WithContext(ctx).Where("case_id = ?", caseID).Order(taskBoardOrder).Find(&tasks).Error; err != nil {
		return nil, persistenceError("fetch tasks", err)
	}
	return tasks, nil
}

// CreateTask adds a manual task to a case
func (s *TaskService) CreateTask(ctx context.Context, caseID string, in CreateTaskInput) (*models.AITask, error) {
	title := sanitize.String(strings.TrimSpace(in.Title))
	if title == "" {
		return nil, NewValidationError("title is required")
	}

	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = models.DefaultTaskPriority
	} else if !models.IsValidTaskPriority(priority) {
		return nil, NewValidationError("invalid priority: %s", in.Priority)
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = models.DefaultTaskCategory
	} else if !models.IsValidTaskCategory(category) {
		return nil, NewValidationError("invalid category: %s", in.Category)
	}

	var dueDate *time.Time
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		parsed, err := parseTaskDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = &parsed
	}

	createdBy := sanitize.String(strings.TrimSpace(in.CreatedBy))
	if createdBy == "" {
		createdBy = models.TaskCreatedByManual
	}

	var relatedTo *string
	if in.RelatedTo != nil && strings.TrimSpace(*in.RelatedTo) != "" {
		id := strings.TrimSpace(*in.RelatedTo)
		if !isID(id) {
			return nil, NewValidationError("invalid relatedTo: %s", id)
		}
		relatedTo = &id
	}

	if err := ensureCaseExists(ctx, s.DB, caseID); err != nil {
		return nil, err
	}

	task := models.AITask{
		CaseID:        caseID,
		Title:         title,
		Description:   sanitize.String(in.Description),
		Priority:      priority,
		Category:      category,
		Status:        models.TaskStatusPending,
		EstimatedTime: sanitize.Ptr(in.EstimatedTime),
		Reasoning:     sanitize.Ptr(in.Reasoning),
		DueDate:       dueDate,
		CreatedBy:     createdBy,
		RelatedTo:     relatedTo,
	}
	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, persistenceError("create task", err)
	}

	logging.L().Info("Task created", zap.String("case_id", caseID), zap.String("task_id", task.ID))
	return &task, nil
}

// UpdateTask patches status, priority and due date of a task of the case.
// Entering completed stamps completedAt; leaving it clears the stamp.
func (s *TaskService) UpdateTask(ctx context.Context, caseID, taskID string, in UpdateTaskInput) (*models.AITask, error) {
	task, err := s.findTask(ctx, caseID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if in.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		if !models.IsValidTaskStatus(status) {
			return nil, NewValidationError("invalid status: %s", status)
		}
		updates["status"] = status
		switch {
		case status == models.TaskStatusCompleted && !task.IsCompleted():
			updates["completed_at"] = s.now()
		case status != models.TaskStatusCompleted && task.CompletedAt != nil:
			updates["completed_at"] = nil
		}
	}

	if in.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*in.Priority))
		if !models.IsValidTaskPriority(priority) {
			return nil, NewValidationError("invalid priority: %s", *in.Priority)
		}
		updates["priority"] = priority
	}

	if len(in.DueDate) > 0 {
		if bytes.Equal(bytes.TrimSpace(in.DueDate), []byte("null")) {
			updates["due_date"] = nil
		} else {
			var raw string
			if err := json.Unmarshal(in.DueDate, &raw); err != nil {
				return nil, NewValidationError("dueDate must be a date string or null")
			}
			parsed, err := parseTaskDate(raw)
			if err != nil {
				return nil, err
			}
			updates["due_date"] = parsed
		}
	}

	if len(updates) == 0 {
		return nil, NewValidationError("no updatable fields provided")
	}

	if err := s.DB.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, persistenceError("update task", err)
	}

	return s.findTask(ctx, caseID, taskID)
}

// DeleteTask removes a task of the case
func (s *TaskService) DeleteTask(ctx context.Context, caseID, taskID string) error {
	task, err := s.findTask(ctx, caseID, taskID)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(task).Error; err != nil {
		return persistenceError("delete task", err)
	}

	logging.L().Info("Task deleted", zap.String("case_id", caseID), zap.String("task_id", taskID))
	return nil
}

func (s *TaskService) findTask(ctx context.Context, caseID, taskID string) (*models.AITask, error) {
	if !isID(caseID) || !isID(taskID) {
		return nil, &NotFoundError{Resource: "Task", ID: taskID}
	}

	var task models.AITask
	err := s.DB.WithContext(ctx).Where("id = ? AND case_id = ?", taskID, caseID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Task", ID: taskID}
		}
		return nil, persistenceError("fetch task", err)
	}
	return &task, nil
}

// parseTaskDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates
func parseTaskDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, NewValidationError("invalid dueDate: %s", value)
}

// ensureCaseExists returns a NotFoundError for unknown cases
func ensureCaseExists(ctx context.Context, db *gorm.DB, caseID string) error {
	if !isID(caseID) {
		return &NotFoundError{Resource: "Case", ID: caseID}
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Case{}).Where("id = ?", caseID).Count(&count).Error; err != nil {
		return persistenceError("load case", err)
	}
	if count == 0 {
		return &NotFoundError{Resource: "Case", ID: caseID}
	}
	return nil
}

// isID reports whether id can name a record. Malformed ids match nothing,
// and Postgres rejects them outright in comparisons with uuid columns.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
