package llm

import (
	"context"
	"encoding/json"
)

// Provider is a single model backend. Client adds defaults, retries, schema
// validation and tracing on top of it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// Stream starts a generation and returns a channel that is closed when the
	// model finishes, the context is cancelled, or the stream fails.
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Content    json.RawMessage
	Model      string
	StopReason string
}

// StreamChunk is one unit of a streamed answer. A chunk with Err set is
// unusable; the consumer decides whether to skip it.
type StreamChunk struct {
	Text string
	Err  error
}

// Schema is a JSON Schema the response must conform to.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
