package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSearchSendsQueryAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tvly-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body searchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Query != "photosynthesis" || body.MaxResults != 3 {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"answer":"light","results":[{"title":"t","url":"u"}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "tvly-test", BaseURL: srv.URL, MaxResults: 3}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Search(context.Background(), "photosynthesis")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out["answer"] != "light" {
		t.Fatalf("unexpected result: %v", out)
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c, _ := New(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 2, Timeout: time.Second}, nil)
	if _, err := c.Search(context.Background(), "q"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 3}, nil)
	if _, err := c.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error")
	}
}
