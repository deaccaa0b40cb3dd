package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{&StatusError{Service: "tavily", StatusCode: 429}, true},
		{fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 503}), true},
		{&StatusError{StatusCode: 401}, false},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v)=%v want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"4"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 4*time.Second {
		t.Fatalf("got=%v", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("cap not applied: %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("fallback not used: %v", got)
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	e := &StatusError{Service: "x", StatusCode: 500, Body: string(make([]byte, 1000))}
	if len(e.Error()) > 350 {
		t.Fatalf("body not truncated: %d", len(e.Error()))
	}
}
