package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReasonChain status constants
const (
	ReasonChainStatusPending  = "pending"
	ReasonChainStatusApproved = "approved"
	ReasonChainStatusRejected = "rejected"
)

// Impact levels
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// Agent types reported by the orchestrator
const (
	AgentTypeOrchestrator = "orchestrator"
	AgentTypeDocu         = "docu"
	AgentTypeSherlock     = "sherlock"
	AgentTypeClientComs   = "client_coms"
	AgentTypeAnalysis     = "analysis"
)

// AnalysisAgentTypes are the agent types replayed in a case's analysis history
var AnalysisAgentTypes = []string{
	AgentTypeOrchestrator,
	AgentTypeDocu,
	AgentTypeSherlock,
	AgentTypeClientComs,
	AgentTypeAnalysis,
}

// ReasonChain is an immutable audit record of one AI-attributable event.
// Status is the only field that changes after creation.
type ReasonChain struct {
	ID         string         `gorm:"type:uuid;primarykey" json:"id"`
	CaseID     string         `gorm:"type:uuid;not null;index:idx_reason_chain_case_time" json:"caseId"`
	AgentType  string         `gorm:"not null;index" json:"agentType"`
	Action     string         `gorm:"not null" json:"action"`
	Reasoning  string         `gorm:"type:text" json:"reasoning"`
	Status     string         `gorm:"not null;default:pending;index" json:"status"`
	Impact     string         `gorm:"not null;default:medium" json:"impact"`
	Confidence *float64       `json:"confidence,omitempty"`
	Data       datatypes.JSON `json:"data,omitempty"`
	Timestamp  time.Time      `gorm:"autoCreateTime;index:idx_reason_chain_case_time" json:"timestamp"`

	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *ReasonChain) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (ReasonChain) TableName() string {
	return "reason_chains"
}

// IsValidReasonChainStatus checks if the status is valid
func IsValidReasonChainStatus(status string) bool {
	switch status {
	case ReasonChainStatusPending, ReasonChainStatusApproved, ReasonChainStatusRejected:
		return true
	}
	return false
}
