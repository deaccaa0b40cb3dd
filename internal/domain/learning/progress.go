package learning

import "time"

// Progress is one row per (user, document, session). Rows are created on
// first use and updated in place, never deleted.
type Progress struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_user_progress_triple,priority:1" json:"user_id"`
	DocumentID         uint      `gorm:"column:pdf_document_id;not null;uniqueIndex:idx_user_progress_triple,priority:2" json:"pdf_document_id"`
	ChatSessionID      uint      `gorm:"not null;uniqueIndex:idx_user_progress_triple,priority:3;index" json:"chat_session_id"`
	HasRead            bool      `gorm:"not null;default:false" json:"has_read"`
	QuizCompleted      bool      `gorm:"not null;default:false" json:"quiz_completed"`
	QuizScore          *float64  `json:"quiz_score,omitempty"`
	ProgressPercentage float64   `gorm:"not null;default:0" json:"progress_percentage"`
	LastUpdated        time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (Progress) TableName() string { return "user_progress" }
