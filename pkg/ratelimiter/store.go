package ratelimiter

import (
	"context"
	"time"
)

// Store persists token bucket state.
//
// ConsumeTokens refills the bucket for key according to config, subtracts
// tokens and returns what is left. The result may be negative: denied requests
// keep draining the bucket. Consuming zero tokens reads the state.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// WindowStore persists fixed window counters.
//
// Increment adds n hits to the current window of key, opening a new window
// of length window when none is active, and returns the hit count in the window
// and the time it closes.
type WindowStore interface {
	Increment(ctx context.Context, key string, n int, window time.Duration) (count int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
