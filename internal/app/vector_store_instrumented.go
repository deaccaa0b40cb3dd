package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

var vectorTracer = otel.Tracer("pdfmentor/vector")

type instrumentedPassageSearcher struct {
	provider string
	inner    services.PassageSearcher
	log      *logger.Logger
}

func instrumentPassageSearcher(provider string, inner services.PassageSearcher, log *logger.Logger) services.PassageSearcher {
	if inner == nil {
		return nil
	}
	return &instrumentedPassageSearcher{
		provider: provider,
		inner:    inner,
		log:      log.With("component", "PassageSearcher", "provider", provider),
	}
}

func (s *instrumentedPassageSearcher) SearchPassages(ctx context.Context, vec []float32, topN int, docIDs []uint) ([]string, error) {
	ctx, span := vectorTracer.Start(ctx, "vector.search_passages")
	defer span.End()
	span.SetAttributes(
		attribute.String("vector.provider", s.provider),
		attribute.Int("vector.top_n", topN),
		attribute.Int("vector.documents", len(docIDs)),
	)

	start := time.Now()
	out, err := s.inner.SearchPassages(ctx, vec, topN, docIDs)
	dur := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("passage search failed", "duration_ms", dur.Milliseconds(), "error", err)
		return out, err
	}
	span.SetAttributes(attribute.Int("vector.results", len(out)))
	s.log.Debug("passage search", "duration_ms", dur.Milliseconds(), "results", len(out))
	return out, nil
}
