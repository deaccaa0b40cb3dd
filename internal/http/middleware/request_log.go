package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

// RequestLogger writes one line per request after the handler returns. For
// SSE routes that is when the stream closes.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		td := ctxutil.GetTraceData(c.Request.Context())
		rd := ctxutil.GetRequestData(c.Request.Context())

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		if strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream") {
			fields = append(fields, "stream", true)
		}
		fields = append(fields, td.LogFields()...)
		if rd != nil && rd.UserID != 0 {
			fields = append(fields, "user_id", rd.UserID)
		}
		if sid := sessionIDOf(c); sid != "" {
			fields = append(fields, "session_id", sid)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func sessionIDOf(c *gin.Context) string {
	if v := c.Query("session_id"); v != "" {
		return v
	}
	if v := c.Param("session_id"); v != "" {
		return v
	}
	if strings.HasPrefix(c.FullPath(), "/api/chat/sessions/") {
		return c.Param("id")
	}
	return ""
}
