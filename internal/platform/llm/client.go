package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

var tracer = otel.Tracer("pdfmentor/llm")

// Client is the model client handed to services. It is built once at
// startup from Config and carries its own decoding defaults.
type Client struct {
	provider    Provider
	log         *logger.Logger
	retry       RetryConfig
	temperature float64
	maxTokens   int
}

// New builds the provider named in cfg.Provider.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg)
	case "openai":
		p, err = NewOpenAIProvider(cfg)
	case "mock":
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return NewWithProvider(p, cfg, log), nil
}

func NewWithProvider(p Provider, cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		provider:    p,
		log:         log.With("client", "LLM", "model", p.ModelID()),
		retry:       cfg.Retry,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *Client) ModelID() string { return c.provider.ModelID() }

func (c *Client) withDefaults(req Request) Request {
	if req.Temperature <= 0 {
		req.Temperature = c.temperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.maxTokens
	}
	return req
}

// StreamText streams a plain text answer. Failures to start the stream are
// returned; failures mid-stream arrive as chunks with Err set. The stream is
// not retried.
func (c *Client) StreamText(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	req = c.withDefaults(req)
	req.Schema = nil
	ch, err := c.provider.Stream(ctx, req)
	if err != nil {
		c.log.Warn("stream start failed", "error", err)
		return nil, err
	}
	return ch, nil
}

func (c *Client) GenerateText(ctx context.Context, req Request) (string, error) {
	req = c.withDefaults(req)
	req.Schema = nil
	ctx, span := c.startSpan(ctx, "llm.GenerateText", req)
	defer span.End()

	start := time.Now()
	resp, err := withRetry(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.provider.Generate(ctx, req)
	})
	if err != nil {
		endSpan(span, err)
		c.log.Warn("generate text failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return "", err
	}
	c.log.Debug("generate text", "duration_ms", time.Since(start).Milliseconds(), "stop_reason", resp.StopReason)
	return string(resp.Content), nil
}

// GenerateJSON asks for JSON matching schema and validates the result.
func (c *Client) GenerateJSON(ctx context.Context, req Request, schema *Schema) (json.RawMessage, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	req = c.withDefaults(req)
	req.Schema = schema
	ctx, span := c.startSpan(ctx, "llm.GenerateJSON", req)
	defer span.End()
	span.SetAttributes(attribute.String("llm.schema", schema.Name))

	start := time.Now()
	out, err := withRetry(ctx, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		resp, err := c.provider.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		content := json.RawMessage(stripCodeFence(string(resp.Content)))
		if err := validateResponse(schema, content); err != nil {
			return nil, err
		}
		return content, nil
	})
	if err != nil {
		endSpan(span, err)
		c.log.Warn("generate json failed", "schema", schema.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	return out, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := tracer.Start(ctx, "llm.Embed", trace.WithAttributes(
		attribute.Int("llm.inputs", len(texts)),
	))
	defer span.End()
	out, err := withRetry(ctx, c.retry, func(ctx context.Context) ([][]float32, error) {
		return c.provider.Embed(ctx, texts)
	})
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	return out, nil
}

func (c *Client) startSpan(ctx context.Context, name string, req Request) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("llm.model", c.provider.ModelID()),
		attribute.Int("llm.max_tokens", req.MaxTokens),
		attribute.Float64("llm.temperature", req.Temperature),
	))
}

func endSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
