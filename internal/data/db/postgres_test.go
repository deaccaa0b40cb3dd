package db

import (
	"strings"
	"testing"
)

func TestPostgresConfigDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss word", Name: "pdfmentor"}
	got := cfg.dsn()
	if !strings.HasPrefix(got, "postgres://app:p%40ss%20word@db:5432/pdfmentor") {
		t.Fatalf("unexpected dsn: %s", got)
	}
	if !strings.HasSuffix(got, "sslmode=disable") {
		t.Fatalf("default sslmode missing: %s", got)
	}

	cfg.DSN = "postgres://override"
	if cfg.dsn() != "postgres://override" {
		t.Fatalf("DSN should win")
	}
}
