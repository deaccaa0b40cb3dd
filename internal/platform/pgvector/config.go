package pgvector

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type Config struct {
	DSN       string
	Table     string
	VectorDim int
	MaxConns  int32
}

type ConfigErrorCode string

const (
	ConfigErrorMissingDSN       ConfigErrorCode = "missing_dsn"
	ConfigErrorInvalidTable     ConfigErrorCode = "invalid_table"
	ConfigErrorInvalidVectorDim ConfigErrorCode = "invalid_vector_dim"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid pgvector config"
	}
	switch e.Code {
	case ConfigErrorMissingDSN:
		return "VECTOR_DATABASE_URL is required"
	case ConfigErrorInvalidTable:
		return fmt.Sprintf("invalid VECTOR_TABLE=%q; expected [schema.]table", e.Value)
	case ConfigErrorInvalidVectorDim:
		return fmt.Sprintf("invalid VECTOR_DIM=%q; expected positive integer", e.Value)
	default:
		return "invalid pgvector config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		DSN:       strings.TrimSpace(os.Getenv("VECTOR_DATABASE_URL")),
		Table:     strings.TrimSpace(os.Getenv("VECTOR_TABLE")),
		VectorDim: 768,
		MaxConns:  4,
	}
	if cfg.Table == "" {
		cfg.Table = "document_chunks"
	}
	if raw := strings.TrimSpace(os.Getenv("VECTOR_DIM")); raw != "" {
		dim, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: raw, Cause: err}
		}
		cfg.VectorDim = dim
	}
	if raw := strings.TrimSpace(os.Getenv("VECTOR_MAX_CONNS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxConns = int32(n)
		}
	}
	return cfg, ValidateConfig(cfg)
}

func ValidateConfig(cfg Config) error {
	if cfg.DSN == "" {
		return &ConfigError{Code: ConfigErrorMissingDSN}
	}
	if !tableName.MatchString(cfg.Table) {
		return &ConfigError{Code: ConfigErrorInvalidTable, Value: cfg.Table}
	}
	if cfg.VectorDim <= 0 {
		return &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: strconv.Itoa(cfg.VectorDim)}
	}
	return nil
}
