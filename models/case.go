package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen    = "open"
	CaseStatusPending = "pending"
	CaseStatusClosed  = "closed"
	CaseStatusOnHold  = "on-hold"
	CaseStatusActive  = "active"
)

// Case priority constants
const (
	CasePriorityLow    = "low"
	CasePriorityMedium = "medium"
	CasePriorityHigh   = "high"
	CasePriorityUrgent = "urgent"
)

// ValidCaseStatuses lists the accepted case statuses in display order
var ValidCaseStatuses = []string{
	CaseStatusOpen,
	CaseStatusPending,
	CaseStatusClosed,
	CaseStatusOnHold,
	CaseStatusActive,
}

// Case represents a client matter
type Case struct {
	ID           string    `gorm:"type:uuid;primarykey" json:"id"`
	ClientName   string    `gorm:"not null" json:"clientName"`
	CaseType     string    `gorm:"not null" json:"caseType"`
	Status       string    `gorm:"not null;default:open;index" json:"status"`
	Priority     string    `gorm:"not null;default:medium" json:"priority"`
	AssignedTo   string    `json:"assignedTo"`
	Description  string    `gorm:"type:text" json:"description"`
	NextAction   *string   `json:"nextAction,omitempty"`
	ClientPhone  *string   `json:"clientPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastActivity time.Time `gorm:"not null;index" json:"lastActivity"`

	// Relationships
	Emails       []Email       `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"emails,omitempty"`
	TextMessages []TextMessage `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"textMessages,omitempty"`
	PhoneCalls   []PhoneCall   `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"phoneCalls,omitempty"`
	ReasonChains []ReasonChain `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"reasonChains,omitempty"`
	Tasks        []AITask      `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Files        []File        `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// BeforeCreate hook to generate UUID and set LastActivity
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.LastActivity.IsZero() {
		c.LastActivity = time.Now()
	}
	if c.Status == "" {
		c.Status = CaseStatusOpen
	}
	if c.Priority == "" {
		c.Priority = CasePriorityMedium
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// DisplayName is the "client - type" label used by list views
func (c *Case) DisplayName() string {
	return c.ClientName + " - " + c.CaseType
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	for _, s := range ValidCaseStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CaseSummary is the trimmed case projection joined onto actions and communications
type CaseSummary struct {
	ID         string `json:"id"`
	ClientName string `json:"clientName"`
	CaseType   string `json:"caseType"`
}

// Summary returns the trimmed projection of the case
func (c *Case) Summary() CaseSummary {
	return CaseSummary{ID: c.ID, ClientName: c.ClientName, CaseType: c.CaseType}
}
