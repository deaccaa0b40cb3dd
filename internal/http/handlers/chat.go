package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/http/response"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type createSessionReq struct {
	Name string `json:"name"`
}

// POST /api/chat/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	session, err := h.chat.CreateSession(requestDB(c), req.Name)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GET /api/chat/sessions?limit=50
func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions(requestDB(c), queryLimit(c, 50))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/chat/sessions/:id/messages?limit=200
func (h *ChatHandler) ListMessages(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.chat.ListMessages(requestDB(c), sessionID, queryLimit(c, 0))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

type attachDocumentsReq struct {
	DocumentIDs []uint `json:"pdf_ids" binding:"required,min=1"`
}

// POST /api/chat/sessions/:id/documents
func (h *ChatHandler) AttachDocuments(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attachDocumentsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ids, err := h.chat.AttachDocuments(requestDB(c), sessionID, req.DocumentIDs)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"chat_session_id": sessionID, "pdf_ids": ids})
}

// POST /api/chat/stream
// body: {"session_id":1,"query":"...","context_pdfs":[1,2],"isSearchMode":false}
//
// Answers with text/event-stream frames `data: {json}\n\n`. Failures before
// the first frame are plain JSON errors.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	w := &sseWriter{c: c}
	turn, err := h.chat.Stream(requestDB(c), req, w.emit)
	if err != nil {
		if !w.started {
			response.RespondServiceError(c, h.log, err)
			return
		}
		h.log.Error("chat stream failed after start", "error", err)
		return
	}
	if turn != nil && turn.Disconnected {
		h.log.Info("chat client disconnected", "session_id", turn.SessionID)
	}
}

// sseWriter frames stream events. Headers go out with the first event so
// that earlier failures can still use a JSON status response.
type sseWriter struct {
	c       *gin.Context
	started bool
}

func (w *sseWriter) emit(ev services.StreamEvent) error {
	if err := w.c.Request.Context().Err(); err != nil {
		return err
	}
	if !w.started {
		h := w.c.Writer.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.c.Status(http.StatusOK)
		w.started = true
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", raw); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}
