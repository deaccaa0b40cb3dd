package chat

import "time"

const DefaultSessionName = "New Chat"

type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null;default:'New Chat'" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatSessionDocument attaches a document to a session's context set.
type ChatSessionDocument struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChatSessionID uint      `gorm:"not null;uniqueIndex:idx_chat_session_pdf,priority:1" json:"chat_session_id"`
	DocumentID    uint      `gorm:"column:pdf_document_id;not null;uniqueIndex:idx_chat_session_pdf,priority:2;index" json:"pdf_document_id"`
	AddedAt       time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (ChatSessionDocument) TableName() string { return "chat_session_pdfs" }
