package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type Searcher interface {
	Search(ctx context.Context, query string) (map[string]any, error)
}

// SearchCache memoizes web search results by normalized query. Redis
// failures fall through to the wrapped searcher.
type SearchCache struct {
	log    *logger.Logger
	rdb    goredis.Cmdable
	inner  Searcher
	ttl    time.Duration
	prefix string
}

func NewSearchCache(log *logger.Logger, rdb goredis.Cmdable, inner Searcher, ttl time.Duration) *SearchCache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SearchCache{
		log:    log.With("client", "SearchCache"),
		rdb:    rdb,
		inner:  inner,
		ttl:    ttl,
		prefix: "websearch:",
	}
}

func (c *SearchCache) Search(ctx context.Context, query string) (map[string]any, error) {
	key := c.key(query)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached map[string]any
		if uErr := json.Unmarshal(raw, &cached); uErr == nil {
			return cached, nil
		}
		c.log.Warn("discarding bad cached search result", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("search cache read failed", "error", err)
	}

	out, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if payload, mErr := json.Marshal(out); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); sErr != nil {
			c.log.Warn("search cache write failed", "error", sErr)
		}
	}
	return out, nil
}

func (c *SearchCache) key(query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(norm))
	return c.prefix + hex.EncodeToString(sum[:16])
}
