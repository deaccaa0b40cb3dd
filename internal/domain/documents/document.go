package documents

import (
	"time"

	"gorm.io/datatypes"
)

// Document is an uploaded PDF. Ingestion owns the row; this service only
// fills in the generated summary and mindmap.
type Document struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Filename   string         `gorm:"column:filename" json:"filename"`
	FileSize   int64          `gorm:"column:file_size" json:"file_size"`
	PageCount  int            `gorm:"column:page_count" json:"page_count"`
	Summary    *string        `gorm:"column:pdf_summary;type:text" json:"summary,omitempty"`
	Mindmap    datatypes.JSON `gorm:"column:mindmap" json:"mindmap,omitempty"`
	UploadDate time.Time      `gorm:"column:upload_date;autoCreateTime" json:"upload_date"`
}

func (Document) TableName() string { return "pdf_documents" }
