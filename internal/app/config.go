package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/pdfmentor-backend/internal/data/db"
	"github.com/yungbote/pdfmentor-backend/internal/observability"
	"github.com/yungbote/pdfmentor-backend/internal/platform/envutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/platform/pgvector"
	"github.com/yungbote/pdfmentor-backend/internal/platform/redis"
	"github.com/yungbote/pdfmentor-backend/internal/platform/tavily"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

type Config struct {
	Port           string
	LogMode        string
	AllowedOrigins []string
	ProgressPolicy services.ProgressPolicy

	Auth     services.AuthConfig
	Postgres db.PostgresConfig
	// Vector is nil when VECTOR_DATABASE_URL is unset; chat then answers
	// without document context.
	Vector *pgvector.Config
	LLM    llm.Config
	Tavily tavily.Config
	Chat   services.ChatConfig

	Redis          redis.Config
	SearchCacheTTL time.Duration
	BusChannel     string

	Otel observability.OtelConfig
}

// LoadConfig reads .env, then the optional YAML file named by CONFIG_FILE,
// then the process environment. Neither file overrides a variable that is
// already set.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		n, err := applyYAMLOverlay(path)
		if err != nil {
			return Config{}, err
		}
		log.Info("Loaded config file", "path", path, "keys", n)
	}

	policy, err := services.ParseProgressPolicy(envutil.String("PROGRESS_POLICY", string(services.DefaultProgressPolicy)))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		LogMode:        envutil.String("LOG_MODE", "development"),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		ProgressPolicy: policy,
		Auth: services.AuthConfig{
			JWTSecret: envutil.String("JWT_SECRET_KEY", ""),
			Issuer:    envutil.String("JWT_ISSUER", ""),
			Leeway:    envutil.Seconds("JWT_LEEWAY_SECONDS", 30*time.Second),
		},
		Postgres: db.PostgresConfig{
			DSN:          envutil.String("DATABASE_URL", ""),
			Host:         envutil.String("POSTGRES_HOST", "localhost"),
			Port:         envutil.String("POSTGRES_PORT", "5432"),
			User:         envutil.String("POSTGRES_USER", "postgres"),
			Password:     envutil.String("POSTGRES_PASSWORD", ""),
			Name:         envutil.String("POSTGRES_NAME", "pdfmentor"),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		LLM:    llm.ConfigFromEnv(),
		Tavily: tavily.ConfigFromEnv(),
		Chat: services.ChatConfig{
			HistoryLimit: envutil.Int("CHAT_HISTORY_LIMIT", 10),
			TopN:         envutil.Int("RETRIEVAL_TOP_N", 5),
			Temperature:  envutil.Float("CHAT_TEMPERATURE", 0.3),
			MaxTokens:    envutil.Int("CHAT_MAX_TOKENS", 3072),
		},
		Redis:          redis.ConfigFromEnv(),
		SearchCacheTTL: envutil.Seconds("SEARCH_CACHE_TTL_SECONDS", time.Hour),
		BusChannel:     envutil.String("SSE_BUS_CHANNEL", "pdfmentor:sse"),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "pdfmentor-api"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
	}

	if envutil.String("VECTOR_DATABASE_URL", "") != "" {
		vc, err := pgvector.ResolveConfigFromEnv()
		if err != nil {
			return Config{}, err
		}
		cfg.Vector = &vc
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	return cfg, nil
}

// applyYAMLOverlay flattens nested keys into env names (llm.provider ->
// LLM_PROVIDER) and sets the ones not already present. It returns how many
// it set.
func applyYAMLOverlay(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read config file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("parse config file %s: %w", path, err)
	}
	flat := map[string]string{}
	flattenYAML("", doc, flat)
	n := 0
	for k, v := range flat {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func flattenYAML(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(k), "-", "_"))
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flattenYAML(key, val, out)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
