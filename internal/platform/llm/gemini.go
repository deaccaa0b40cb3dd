package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

type GeminiProvider struct {
	client     *genai.Client
	model      string
	embedModel string
	embedDims  int
}

func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client:     client,
		model:      resolveModel(cfg.Model, geminiModels),
		embedModel: cfg.EmbeddingModel,
		embedDims:  cfg.EmbeddingDims,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(req.Prompt), geminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}
	content := json.RawMessage(result.Text())
	stop := mapGeminiStopReason(result)
	if stop == "max_tokens" && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	return &Response{Content: content, Model: p.model, StopReason: stop}, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	seq := p.client.Models.GenerateContentStream(ctx, p.model, geminiContents(req.Prompt), geminiConfig(req))
	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for resp, err := range seq {
			var chunk StreamChunk
			if err != nil {
				chunk.Err = mapGeminiError(err)
			} else if resp != nil {
				chunk.Text = resp.Text()
			}
			if chunk.Err == nil && chunk.Text == "" {
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
			if chunk.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: t}}})
	}
	cfg := &genai.EmbedContentConfig{}
	if p.embedDims > 0 {
		dims := int32(p.embedDims)
		cfg.OutputDimensionality = &dims
	}
	res, err := p.client.Models.EmbedContent(ctx, p.embedModel, contents, cfg)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))}
	}
	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func geminiContents(prompt string) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}
	return config
}

// buildGeminiSchema converts a JSON Schema definition map to a genai.Schema.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}
	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if enums, ok := def["enum"].([]any); ok {
		for _, e := range enums {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}
	return schema
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "max_tokens"
	}
	return "end"
}

func mapGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.Code >= 400:
			return &ErrRejected{Provider: "gemini", Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
