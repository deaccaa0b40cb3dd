package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pdfmentor-backend/internal/platform/envutil"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func ConfigFromEnv() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	}
}

// NewClient connects and pings. An empty Addr is an error; callers treat
// Redis as optional and skip construction when it is unset.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
