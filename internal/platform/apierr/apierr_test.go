package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTaxonomyMatchesThroughWrapping(t *testing.T) {
	nf := fmt.Errorf("load quiz: %w", NotFound("Quiz not found"))
	if !errors.Is(nf, ErrNotFound) {
		t.Fatalf("expected ErrNotFound match")
	}
	if errors.Is(nf, ErrValidation) {
		t.Fatalf("not found must not match validation")
	}

	var ae *Error
	if !errors.As(nf, &ae) || ae.Status != http.StatusNotFound || ae.Error() != "Quiz not found" {
		t.Fatalf("unexpected api error: %#v", ae)
	}

	v := Validation("duplicate question_id %d", 3)
	if !errors.Is(v, ErrValidation) || v.Code != "validation_error" {
		t.Fatalf("unexpected validation error: %#v", v)
	}
	if v.Error() != "duplicate question_id 3" {
		t.Fatalf("unexpected message: %q", v.Error())
	}
}

func TestErrorFallbackMessages(t *testing.T) {
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("got=%q", got)
	}
	if got := New(0, "conflict", nil).Error(); got != "conflict" {
		t.Fatalf("got=%q", got)
	}
}
