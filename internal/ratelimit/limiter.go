package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a single limiter check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter answers whether one more request under key may proceed.
// Implementations consume a slot on every Allow call.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type allowAll struct{}

// Unlimited never rejects. Used when rate limiting is disabled.
func Unlimited() Limiter {
	return allowAll{}
}

func (allowAll) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: 1}, nil
}
