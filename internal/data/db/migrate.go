package db

import (
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Documents
		// =========================
		&types.Document{},

		// =========================
		// Chat
		// =========================
		&types.ChatSession{},
		&types.ChatSessionDocument{},
		&types.ChatMessage{},

		// =========================
		// Quizzes + progress
		// =========================
		&types.Quiz{},
		&types.QuizQuestion{},
		&types.QuizAnswer{},
		&types.QuizSubmission{},
		&types.Progress{},
	)
}
