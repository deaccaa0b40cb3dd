package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIProvider also serves OpenAI-compatible APIs via BaseURL.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	embedModel string
	embedDims  int
}

func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(config),
		model:      resolveModel(cfg.Model, openaiModels),
		embedModel: cfg.EmbeddingModel,
		embedDims:  cfg.EmbeddingDims,
	}, nil
}

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            buildOpenAIMessages(req),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return chatReq, fmt.Errorf("marshal schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(schemaBytes),
			},
		}
	}
	return chatReq, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in OpenAI response")}
	}
	content := json.RawMessage(resp.Choices[0].Message.Content)
	if resp.Choices[0].FinishReason == openai.FinishReasonLength && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	return &Response{
		Content:    content,
		Model:      resp.Model,
		StopReason: mapOpenAIStopReason(resp.Choices[0].FinishReason),
	}, nil
}

func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}
	chatReq.Stream = true
	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			var chunk StreamChunk
			if err != nil {
				chunk.Err = mapOpenAIError(err)
			} else if len(resp.Choices) > 0 {
				chunk.Text = resp.Choices[0].Delta.Content
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

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.embedModel),
	}
	if p.embedDims > 0 {
		req.Dimensions = p.embedDims
	}
	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))}
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, &ErrInvalidResponse{Err: fmt.Errorf("embedding index %d out of range", d.Index)}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	if reason == openai.FinishReasonLength {
		return "max_tokens"
	}
	return "end"
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.HTTPStatusCode >= 400:
			return &ErrRejected{Provider: "openai", Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
