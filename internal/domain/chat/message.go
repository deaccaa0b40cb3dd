package chat

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	SessionID uint `gorm:"not null;index:idx_chat_message_session_created,priority:1" json:"session_id"`
	// UserID is nil for assistant messages.
	UserID *uint `gorm:"index" json:"user_id,omitempty"`

	IsUserMessage bool           `gorm:"column:is_user_message;not null;default:true" json:"is_user_message"`
	Content       string         `gorm:"column:content;type:text;not null;default:''" json:"content"`
	SearchData    datatypes.JSON `gorm:"column:search_data" json:"search_data,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_chat_message_session_created,priority:2" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

func (m ChatMessage) Role() string {
	if m.IsUserMessage {
		return RoleUser
	}
	return RoleAssistant
}
