package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/http/response"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

type EducationHandler struct {
	log       *logger.Logger
	progress  services.ProgressService
	quizzes   services.QuizService
	materials services.StudyMaterialsService
}

func NewEducationHandler(log *logger.Logger, progress services.ProgressService, quizzes services.QuizService, materials services.StudyMaterialsService) *EducationHandler {
	return &EducationHandler{
		log:       log.With("handler", "EducationHandler"),
		progress:  progress,
		quizzes:   quizzes,
		materials: materials,
	}
}

// GET /api/summary/:doc_id
func (h *EducationHandler) GetSummary(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	summary, err := h.materials.GetSummary(requestDB(c), docID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}

// GET /api/mindmap/:doc_id
func (h *EducationHandler) GetMindmap(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	mm, err := h.materials.GetMindmap(requestDB(c), docID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, mm)
}

// GET /api/quiz/:doc_id
func (h *EducationHandler) GetQuiz(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.GetQuizForDocument(requestDB(c), docID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, quiz)
}

// POST /api/quiz/:quiz_id/submit?session_id=
// body: {"answers":[{"question_id":1,"answer_id":3}, ...]}
func (h *EducationHandler) SubmitQuiz(c *gin.Context) {
	quizID, ok := pathID(c, "quiz_id")
	if !ok {
		return
	}
	sessionID, ok := queryID(c, "session_id")
	if !ok {
		return
	}
	var req services.QuizSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.quizzes.Submit(requestDB(c), quizID, sessionID, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/track/:doc_id/read?session_id=
func (h *EducationHandler) TrackRead(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	sessionID, ok := queryID(c, "session_id")
	if !ok {
		return
	}
	row, err := h.progress.TrackDocumentOpened(requestDB(c), docID, sessionID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message":             "Reading progress tracked successfully",
		"progress_percentage": row.ProgressPercentage,
	})
}

// GET /api/progress/session/:session_id
func (h *EducationHandler) SessionProgress(c *gin.Context) {
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	rows, err := h.progress.ListSessionProgress(requestDB(c), sessionID)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	if rows == nil {
		rows = []services.SessionDocumentProgress{}
	}
	response.RespondOK(c, rows)
}

// POST /api/documents/:doc_id/study-materials
// body: {"text":"...", "skip_summary":false, "skip_mindmap":false, "skip_quiz":false}
func (h *EducationHandler) GenerateStudyMaterials(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	var req services.StudyMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.materials.Generate(requestDB(c), docID, req)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
