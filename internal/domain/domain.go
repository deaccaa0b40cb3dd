package domain

import (
	"github.com/yungbote/pdfmentor-backend/internal/domain/chat"
	"github.com/yungbote/pdfmentor-backend/internal/domain/documents"
	"github.com/yungbote/pdfmentor-backend/internal/domain/learning"
	"github.com/yungbote/pdfmentor-backend/internal/domain/user"
)

const (
	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant

	DefaultSessionName = chat.DefaultSessionName

	QuestionMultipleChoice = learning.QuestionMultipleChoice
	QuestionTrueFalse      = learning.QuestionTrueFalse
	QuestionShortAnswer    = learning.QuestionShortAnswer
)

type User = user.User

type Document = documents.Document
type Mindmap = documents.Mindmap
type MindmapNode = documents.MindmapNode
type MindmapLink = documents.MindmapLink

type ChatSession = chat.ChatSession
type ChatSessionDocument = chat.ChatSessionDocument
type ChatMessage = chat.ChatMessage

type Quiz = learning.Quiz
type QuizQuestion = learning.QuizQuestion
type QuizAnswer = learning.QuizAnswer
type QuizSubmission = learning.QuizSubmission
type Progress = learning.Progress

var FallbackMindmap = documents.FallbackMindmap
