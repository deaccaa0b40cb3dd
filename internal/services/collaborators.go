package services

import (
	"context"
	"encoding/json"

	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
)

// ChatModel streams an answer. *llm.Client satisfies it.
type ChatModel interface {
	StreamText(ctx context.Context, req llm.Request) (<-chan llm.StreamChunk, error)
}

// TextGenerator produces single completions. *llm.Client satisfies it.
type TextGenerator interface {
	GenerateText(ctx context.Context, req llm.Request) (string, error)
	GenerateJSON(ctx context.Context, req llm.Request, schema *llm.Schema) (json.RawMessage, error)
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// PassageSearcher returns the topN passages closest to vec, limited to docIDs.
type PassageSearcher interface {
	SearchPassages(ctx context.Context, vec []float32, topN int, docIDs []uint) ([]string, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string) (map[string]any, error)
}
