package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type fakeSearcher struct {
	calls int
	err   error
}

func (f *fakeSearcher) SearchPassages(_ context.Context, _ []float32, topN int, _ []uint) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, topN)
	for i := range out {
		out[i] = "p"
	}
	return out, nil
}

func TestInstrumentPassageSearcherPassThrough(t *testing.T) {
	inner := &fakeSearcher{}
	s := instrumentPassageSearcher("pgvector", inner, logger.Nop())
	out, err := s.SearchPassages(context.Background(), []float32{1, 2}, 3, []uint{1})
	if err != nil {
		t.Fatalf("SearchPassages: %v", err)
	}
	if len(out) != 3 || inner.calls != 1 {
		t.Fatalf("unexpected result len=%d calls=%d", len(out), inner.calls)
	}
}

func TestInstrumentPassageSearcherErrorPassThrough(t *testing.T) {
	want := errors.New("pool closed")
	s := instrumentPassageSearcher("pgvector", &fakeSearcher{err: want}, logger.Nop())
	if _, err := s.SearchPassages(context.Background(), nil, 1, nil); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestInstrumentPassageSearcherNil(t *testing.T) {
	if instrumentPassageSearcher("pgvector", nil, logger.Nop()) != nil {
		t.Fatalf("expected nil wrapper for nil inner")
	}
}
