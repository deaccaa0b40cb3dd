package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxInboundIDLen = 128
)

// AttachTraceContext assigns trace and request ids to every request. The
// otel span started by otelgin wins over a client-supplied trace id so logs
// and traces line up.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqID := inboundID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		span := trace.SpanFromContext(ctx)
		traceID := ""
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if traceID = inboundID(c.GetHeader(headerTraceID)); traceID == "" {
			traceID = uuid.NewString()
		}
		span.SetAttributes(attribute.String("http.request_id", reqID))

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// inboundID drops oversized or multi-line ids rather than echoing them.
func inboundID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxInboundIDLen || strings.ContainsAny(id, "\r\n") {
		return ""
	}
	return id
}
