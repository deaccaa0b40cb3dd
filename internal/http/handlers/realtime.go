package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/sse/stream
// Every connection of a user listens on that user's channel; a user may
// have several tabs open.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "not authenticated", "code": "unauthorized"}})
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	h.log.Debug("SSE stream open", "user_id", rd.UserID, "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
}
