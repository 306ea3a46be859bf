package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File type constants
const (
	FileTypePDF      = "pdf"
	FileTypeAudio    = "audio"
	FileTypeImage    = "image"
	FileTypeDocument = "document"
	FileTypeCSV      = "csv"
)

// File references a document stored outside the database
type File struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	CaseID     string    `gorm:"type:uuid;not null;index" json:"caseId"`
	Name       string    `gorm:"not null" json:"name"`
	URL        string    `json:"url"`
	StorageKey *string   `json:"-"` // Object key in R2 when the file lives in our bucket
	Type       string    `json:"type"`
	Size       *string   `json:"size,omitempty"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `gorm:"autoCreateTime;index" json:"uploadedAt"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (File) TableName() string {
	return "files"
}
