package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "validate-test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"level": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []any{"title"},
		},
	}
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"title":"t","level":1}`, false},
		{"missing required", `{"level":1}`, true},
		{"wrong type", `{"title":"t","level":"one"}`, true},
		{"not json", `{`, true},
	}
	for _, tc := range cases {
		err := validateResponse(schema, json.RawMessage(tc.raw))
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
		var inv *ErrInvalidResponse
		if err != nil && !errors.As(err, &inv) {
			t.Fatalf("%s: expected ErrInvalidResponse, got %T", tc.name, err)
		}
	}
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema must pass: %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1]\n```":           `[1]`,
		`{"a":1}`:                 `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripCodeFence(in); got != want {
			t.Fatalf("stripCodeFence(%q)=%q want %q", in, got, want)
		}
	}
}
