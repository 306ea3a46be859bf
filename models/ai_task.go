package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status constants
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusDismissed  = "dismissed"
)

// Task priority constants
const (
	TaskPriorityHigh   = "high"
	TaskPriorityMedium = "medium"
	TaskPriorityLow    = "low"
)

// Task category constants
const (
	TaskCategoryDocument      = "document"
	TaskCategoryCommunication = "communication"
	TaskCategoryResearch      = "research"
	TaskCategoryDeadline      = "deadline"
	TaskCategoryFollowUp      = "follow-up"
)

// Defaults applied to tasks created without explicit values
const (
	DefaultTaskTitle    = "Untitled Task"
	DefaultTaskPriority = TaskPriorityMedium
	DefaultTaskCategory = TaskCategoryFollowUp
	TaskCreatedByManual = "manual"
)

// AITask is an actionable to-do derived from an analysis or created by hand
type AITask struct {
	ID            string     `gorm:"type:uuid;primarykey" json:"id"`
	CaseID        string     `gorm:"type:uuid;not null;index" json:"caseId"`
	Title         string     `gorm:"not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Priority      string     `gorm:"not null;default:medium" json:"priority"`
	Category      string     `gorm:"not null;default:follow-up" json:"category"`
	Status        string     `gorm:"not null;default:pending;index" json:"status"`
	EstimatedTime *string    `json:"estimatedTime"`
	Reasoning     *string    `gorm:"type:text" json:"reasoning"`
	DueDate       *time.Time `json:"dueDate"`
	CreatedBy     string     `gorm:"not null" json:"createdBy"`
	RelatedTo     *string    `gorm:"type:uuid;index" json:"relatedTo"` // ReasonChain that produced the task
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BeforeCreate hook to generate UUID and fill defaults
func (t *AITask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	return nil
}

func (AITask) TableName() string {
	return "ai_tasks"
}

// IsCompleted checks if the task is completed
func (t *AITask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsValidTaskStatus checks if the status is valid
func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDismissed:
		return true
	}
	return false
}

// IsValidTaskPriority checks if the priority is valid
func IsValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

// IsValidTaskCategory checks if the category is valid
func IsValidTaskCategory(category string) bool {
	switch category {
	case TaskCategoryDocument, TaskCategoryCommunication, TaskCategoryResearch, TaskCategoryDeadline, TaskCategoryFollowUp:
		return true
	}
	return false
}
