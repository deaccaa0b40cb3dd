package ctxutil

import "context"

type (
	requestDataKey struct{}
	traceDataKey   struct{}
)

// RequestData carries the authenticated caller for the lifetime of a request.
type RequestData struct {
	UserID     uint
	ExternalID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// TraceData correlates log lines of one HTTP request, including the ones
// written after an SSE stream outlives the handler.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	var out []interface{}
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	return out
}
