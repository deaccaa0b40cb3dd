package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/platform/pgvector"
	"github.com/yungbote/pdfmentor-backend/internal/platform/redis"
	"github.com/yungbote/pdfmentor-backend/internal/platform/tavily"
	"github.com/yungbote/pdfmentor-backend/internal/realtime/bus"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

// Clients are the outbound connections. Optional ones stay nil when they
// are not configured.
type Clients struct {
	LLM      *llm.Client
	Vector   *pgvector.Store
	Passages services.PassageSearcher
	Web      services.WebSearcher
	Redis    *goredis.Client
	SSEBus   bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	model, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	c.LLM = model

	if cfg.Vector != nil {
		store, err := pgvector.NewStore(ctx, log, *cfg.Vector)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init vector store: %w", err)
		}
		c.Vector = store
		c.Passages = instrumentPassageSearcher("pgvector", store, log)
	} else {
		log.Warn("VECTOR_DATABASE_URL not set; chat runs without document context")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rdb
		b, err := bus.NewRedisBus(log, rdb, cfg.BusChannel)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis SSE bus: %w", err)
		}
		c.SSEBus = b
	}

	if cfg.Tavily.APIKey != "" {
		tc, err := tavily.New(cfg.Tavily, log)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init tavily: %w", err)
		}
		var web services.WebSearcher = tc
		if c.Redis != nil {
			web = redis.NewSearchCache(log, c.Redis, tc, cfg.SearchCacheTTL)
		}
		c.Web = web
	} else {
		log.Warn("TAVILY_API_KEY not set; search mode answers with the no-results placeholder")
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Vector != nil {
		c.Vector.Close()
	}
}
