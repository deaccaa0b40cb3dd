package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type OperationErrorCode string

const (
	OperationErrorValidation  OperationErrorCode = "validation_failed"
	OperationErrorQueryFailed OperationErrorCode = "query_failed"
	OperationErrorTimeout     OperationErrorCode = "timeout"
)

type OperationError struct {
	Code      OperationErrorCode
	Operation string
	Message   string
	Cause     error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "pgvector operation failed"
	}
	if e.Message != "" {
		return fmt.Sprintf("pgvector operation failed (op=%s code=%s): %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("pgvector operation failed (op=%s code=%s): %v", e.Operation, e.Code, e.Cause)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func opErr(op string, code OperationErrorCode, msg string, cause error) error {
	return &OperationError{Code: code, Operation: op, Message: msg, Cause: cause}
}

// Store reads PDF chunks that the ingestion pipeline wrote into a pgvector
// table with columns (chunk_text text, embedding vector, document_metadata jsonb).
type Store struct {
	log   *logger.Logger
	pool  *pgxpool.Pool
	query string
	dim   int
}

func NewStore(ctx context.Context, log *logger.Logger, cfg Config) (*Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse vector dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect vector db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping vector db: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		log:   log.With("client", "PgVectorStore", "table", cfg.Table),
		pool:  pool,
		query: searchQuery(cfg.Table),
		dim:   cfg.VectorDim,
	}, nil
}

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// SearchPassages returns the text of the topN chunks nearest to vec by cosine
// distance. When docIDs is non-empty only chunks of those documents match.
func (s *Store) SearchPassages(ctx context.Context, vec []float32, topN int, docIDs []uint) ([]string, error) {
	const op = "search_passages"
	if len(vec) != s.dim {
		return nil, opErr(op, OperationErrorValidation, fmt.Sprintf("vector has %d dims, want %d", len(vec), s.dim), nil)
	}
	if topN <= 0 {
		return []string{}, nil
	}
	var filter []string
	if len(docIDs) > 0 {
		filter = make([]string, len(docIDs))
		for i, id := range docIDs {
			filter[i] = strconv.FormatUint(uint64(id), 10)
		}
	}

	rows, err := s.pool.Query(ctx, s.query, vectorLiteral(vec), filter, topN)
	if err != nil {
		return nil, classify(op, err)
	}
	passages, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify(op, err)
	}
	s.log.Debug("vector search", "matches", len(passages), "top_n", topN)
	return passages, nil
}

func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, "", err)
	}
	return opErr(op, OperationErrorQueryFailed, "", err)
}

func searchQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return `SELECT chunk_text FROM ` + ident + `
WHERE ($2::text[] IS NULL OR document_metadata->>'pdf_id' = ANY($2::text[]))
ORDER BY embedding <=> $1::vector
LIMIT $3`
}

// vectorLiteral renders vec in pgvector's text input format.
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec) * 10)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
