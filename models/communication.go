package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Phone call status constants
const (
	PhoneCallStatusInitiated = "initiated"
)

// Email is an outbound or logged email tied to a case. Append-only.
type Email struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CaseID    string    `gorm:"type:uuid;not null;index" json:"caseId"`
	From      string    `gorm:"not null" json:"from"`
	To        string    `gorm:"not null" json:"to"`
	Subject   string    `gorm:"not null" json:"subject"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (Email) TableName() string {
	return "emails"
}

// TextMessage is an SMS exchanged with the client. Append-only.
type TextMessage struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CaseID    string    `gorm:"type:uuid;not null;index" json:"caseId"`
	From      string    `gorm:"not null" json:"from"`
	To        string    `gorm:"not null" json:"to"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

func (m *TextMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (TextMessage) TableName() string {
	return "text_messages"
}

// PhoneCall records an outbound call and the case status around it
type PhoneCall struct {
	ID               string    `gorm:"type:uuid;primarykey" json:"id"`
	CaseID           string    `gorm:"type:uuid;not null;index" json:"caseId"`
	PhoneNumber      string    `gorm:"not null" json:"phoneNumber"`
	Message          string    `gorm:"type:text" json:"message"`
	CallSid          *string   `json:"callSid,omitempty"`
	Status           string    `gorm:"not null" json:"status"`
	StatusBeforeCall *string   `json:"statusBeforeCall,omitempty"`
	StatusAfterCall  *string   `json:"statusAfterCall,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

func (p *PhoneCall) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (PhoneCall) TableName() string {
	return "phone_calls"
}
