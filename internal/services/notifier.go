package services

import (
	"context"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/realtime"
)

// Notifier pushes state changes to the user's realtime streams. All methods
// are fire-and-forget.
type Notifier interface {
	ProgressUpdated(userID uint, progress *types.Progress)
	QuizSubmitted(userID uint, result *QuizResult)
	StudyMaterialsGenerated(userID uint, result *StudyMaterials)
	ChatSessionCreated(userID uint, session *types.ChatSession)
}

type notifier struct {
	emit SSEEmitter
}

func NewNotifier(emit SSEEmitter) Notifier {
	return &notifier{emit: emit}
}

func (n *notifier) send(userID uint, event realtime.SSEEvent, data any) {
	if n == nil || n.emit == nil || userID == 0 {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *notifier) ProgressUpdated(userID uint, progress *types.Progress) {
	if progress == nil {
		return
	}
	n.send(userID, realtime.SSEEventProgressUpdated, map[string]any{
		"pdf_id":              progress.DocumentID,
		"chat_session_id":     progress.ChatSessionID,
		"has_read":            progress.HasRead,
		"quiz_completed":      progress.QuizCompleted,
		"progress_percentage": progress.ProgressPercentage,
	})
}

func (n *notifier) QuizSubmitted(userID uint, result *QuizResult) {
	if result == nil {
		return
	}
	n.send(userID, realtime.SSEEventQuizSubmitted, result)
}

func (n *notifier) StudyMaterialsGenerated(userID uint, result *StudyMaterials) {
	if result == nil {
		return
	}
	n.send(userID, realtime.SSEEventStudyMaterialsGenerated, map[string]any{
		"pdf_id":       result.DocumentID,
		"has_summary":  result.Summary != "",
		"has_mindmap":  result.Mindmap != nil,
		"quiz_id":      result.QuizID,
		"mindmap_fallback": result.MindmapFallback,
	})
}

func (n *notifier) ChatSessionCreated(userID uint, session *types.ChatSession) {
	if session == nil {
		return
	}
	n.send(userID, realtime.SSEEventChatSessionCreated, map[string]any{"session": session})
}
