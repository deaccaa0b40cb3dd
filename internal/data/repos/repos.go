package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos/chat"
	"github.com/yungbote/pdfmentor-backend/internal/data/repos/documents"
	"github.com/yungbote/pdfmentor-backend/internal/data/repos/learning"
	"github.com/yungbote/pdfmentor-backend/internal/data/repos/user"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type DocumentRepo = documents.DocumentRepo

type ChatSessionRepo = chat.ChatSessionRepo
type ChatSessionDocumentRepo = chat.ChatSessionDocumentRepo
type ChatMessageRepo = chat.ChatMessageRepo

type QuizRepo = learning.QuizRepo
type QuizSubmissionRepo = learning.QuizSubmissionRepo
type ProgressRepo = learning.ProgressRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, baseLog)
}

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
	return chat.NewChatSessionRepo(db, baseLog)
}
func NewChatSessionDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionDocumentRepo {
	return chat.NewChatSessionDocumentRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return learning.NewQuizRepo(db, baseLog)
}
func NewQuizSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) QuizSubmissionRepo {
	return learning.NewQuizSubmissionRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return learning.NewProgressRepo(db, baseLog)
}

// Set groups every repository the services need.
type Set struct {
	Users            UserRepo
	Documents        DocumentRepo
	Sessions         ChatSessionRepo
	SessionDocuments ChatSessionDocumentRepo
	Messages         ChatMessageRepo
	Quizzes          QuizRepo
	Submissions      QuizSubmissionRepo
	Progress         ProgressRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:            NewUserRepo(db, baseLog),
		Documents:        NewDocumentRepo(db, baseLog),
		Sessions:         NewChatSessionRepo(db, baseLog),
		SessionDocuments: NewChatSessionDocumentRepo(db, baseLog),
		Messages:         NewChatMessageRepo(db, baseLog),
		Quizzes:          NewQuizRepo(db, baseLog),
		Submissions:      NewQuizSubmissionRepo(db, baseLog),
		Progress:         NewProgressRepo(db, baseLog),
	}
}
