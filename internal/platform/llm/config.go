package llm

import (
	"time"

	"github.com/yungbote/pdfmentor-backend/internal/platform/envutil"
)

type Config struct {
	// Provider is "gemini", "openai" or "mock".
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	EmbeddingDims  int
	Temperature    float64
	MaxTokens      int
	Retry          RetryConfig
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     8 * time.Second,
		Multiplier:  2.0,
	}
}

// ConfigFromEnv reads LLM_* variables. The API key falls back to the
// provider specific GEMINI_API_KEY / OPENAI_API_KEY.
func ConfigFromEnv() Config {
	provider := envutil.String("LLM_PROVIDER", "gemini")
	cfg := Config{
		Provider:       provider,
		APIKey:         envutil.String("LLM_API_KEY", ""),
		BaseURL:        envutil.String("LLM_BASE_URL", ""),
		Model:          envutil.String("LLM_MODEL", ""),
		EmbeddingModel: envutil.String("LLM_EMBEDDING_MODEL", ""),
		EmbeddingDims:  envutil.Int("LLM_EMBEDDING_DIMS", 768),
		Temperature:    envutil.Float("LLM_TEMPERATURE", 0.3),
		MaxTokens:      envutil.Int("LLM_MAX_TOKENS", 3072),
		Retry:          DefaultRetryConfig(),
	}
	cfg.Retry.MaxAttempts = envutil.Int("LLM_RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)

	switch provider {
	case "gemini":
		if cfg.APIKey == "" {
			cfg.APIKey = envutil.String("GEMINI_API_KEY", "")
		}
		if cfg.Model == "" {
			cfg.Model = "gemini-flash"
		}
		if cfg.EmbeddingModel == "" {
			cfg.EmbeddingModel = "text-embedding-004"
		}
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = envutil.String("OPENAI_API_KEY", "")
		}
		if cfg.Model == "" {
			cfg.Model = "gpt-4o-mini"
		}
		if cfg.EmbeddingModel == "" {
			cfg.EmbeddingModel = "text-embedding-3-small"
		}
	}
	return cfg
}
