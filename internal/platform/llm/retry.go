package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// withRetry runs fn with exponential backoff and jitter for transient errors.
func withRetry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero           T
		lastErr        error
		invalidRetried bool
	)
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := range attempts {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !shouldRetry(err, &invalidRetried) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff(cfg, attempt, err)):
		}
	}
	return zero, lastErr
}

func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}
	var rejected *ErrRejected
	if errors.As(err, &rejected) {
		return false
	}
	// Invalid responses get one more try.
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}
	return true
}

func backoff(cfg RetryConfig, attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	mult := cfg.Multiplier
	if mult <= 0 {
		mult = 2
	}
	wait := float64(cfg.InitialWait) * math.Pow(mult, float64(attempt))
	if cfg.MaxWait > 0 && wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}
	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
