package pgvector

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestVectorLiteral(t *testing.T) {
	if got := vectorLiteral([]float32{0.5, -1, 2.25}); got != "[0.5,-1,2.25]" {
		t.Fatalf("got=%q", got)
	}
	if got := vectorLiteral(nil); got != "[]" {
		t.Fatalf("got=%q", got)
	}
}

func TestSearchQueryQuotesTable(t *testing.T) {
	q := searchQuery("public.pdf_chunks")
	if !strings.Contains(q, `FROM "public"."pdf_chunks"`) {
		t.Fatalf("table not sanitized: %s", q)
	}
	if !strings.Contains(q, "<=> $1::vector") || !strings.Contains(q, "LIMIT $3") {
		t.Fatalf("unexpected query: %s", q)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		cfg  Config
		code ConfigErrorCode
	}{
		{Config{Table: "t", VectorDim: 3}, ConfigErrorMissingDSN},
		{Config{DSN: "postgres://x", Table: "bad;drop", VectorDim: 3}, ConfigErrorInvalidTable},
		{Config{DSN: "postgres://x", Table: "t", VectorDim: 0}, ConfigErrorInvalidVectorDim},
	}
	for _, tc := range cases {
		var ce *ConfigError
		if err := ValidateConfig(tc.cfg); !errors.As(err, &ce) || ce.Code != tc.code {
			t.Fatalf("cfg %+v: got %v want %s", tc.cfg, err, tc.code)
		}
	}
	if err := ValidateConfig(Config{DSN: "postgres://x", Table: "public.pdf_chunks", VectorDim: 768}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestResolveConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("VECTOR_DATABASE_URL", "postgres://neon")
	t.Setenv("VECTOR_TABLE", "")
	t.Setenv("VECTOR_DIM", "")
	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Table != "document_chunks" || cfg.VectorDim != 768 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	t.Setenv("VECTOR_DIM", "abc")
	if _, err := ResolveConfigFromEnv(); err == nil {
		t.Fatal("expected invalid dim error")
	}
}

func TestSearchPassagesRejectsWrongDimension(t *testing.T) {
	s := &Store{dim: 3}
	_, err := s.SearchPassages(context.Background(), []float32{1, 2}, 5, nil)
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Code != OperationErrorValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchPassagesIntegration(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_VECTOR_DSN"))
	if dsn == "" {
		t.Skip("TEST_VECTOR_DSN not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, nil, Config{DSN: dsn, Table: "pdf_chunks_it", VectorDim: 3})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		t.Fatalf("extension: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS pdf_chunks_it`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `CREATE TABLE pdf_chunks_it (chunk_text text, embedding vector(3), document_metadata jsonb)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _, _ = s.pool.Exec(context.Background(), `DROP TABLE IF EXISTS pdf_chunks_it`) })
	if _, err := s.pool.Exec(ctx, `INSERT INTO pdf_chunks_it VALUES
		('near', '[1,0,0]', '{"pdf_id":"1"}'),
		('far', '[0,1,0]', '{"pdf_id":"1"}'),
		('other doc', '[1,0,0]', '{"pdf_id":"2"}')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.SearchPassages(ctx, []float32{1, 0, 0}, 5, []uint{1})
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(got) != 2 || got[0] != "near" {
		t.Fatalf("unexpected passages: %v", got)
	}
}
