package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts requests per key inside a fixed window. The memory store
// serves single-instance deployments; the redis store shares counters across
// instances. The limiter logic is the same either way.
type Store interface {
	// Incr bumps the key's counter, starting a new window if none is open,
	// and returns the count plus the time left in the window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter enforces a max-requests-per-window policy for one endpoint group.
type Limiter struct {
	store  Store
	prefix string
	window time.Duration
	max    int64
}

func NewLimiter(store Store, prefix string, window time.Duration, max int64) *Limiter {
	return &Limiter{
		store:  store,
		prefix: prefix,
		window: window,
		max:    max,
	}
}

// Allow records one request for key and decides whether it may proceed.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, remaining, err := l.store.Incr(ctx, l.prefix+":"+key, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}
	if count > l.max {
		return Decision{Allowed: false, RetryAfter: remaining}, nil
	}
	return Decision{Allowed: true}, nil
}
