package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// FixedWindow counts hits per key in consecutive windows and allows at most
// Limit of them per window. The first window of a key starts with its first hit.
type FixedWindow struct {
	store  WindowStore
	config WindowConfig
}

var _ RateLimiter = (*FixedWindow)(nil)

// NewFixedWindow creates a fixed window limiter.
func NewFixedWindow(store WindowStore, config WindowConfig) (*FixedWindow, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &FixedWindow{store: store, config: config}, nil
}

// Config returns the window parameters.
func (w *FixedWindow) Config() WindowConfig {
	return w.config
}

// Allow records one hit for key. Result.Remaining is -1 exactly on the first
// hit over the limit, which callers use to act once per window.
func (w *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	return w.AllowN(ctx, key, 1)
}

// AllowN records n hits for key.
func (w *FixedWindow) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count, resetAt, err := w.store.Increment(ctx, key, n, w.config.Window)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: w.config.Limit, Remaining: w.config.Limit - count, ResetAt: resetAt}, nil
}

// Reset clears the window for key.
func (w *FixedWindow) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.store.Reset(ctx, key)
}

// Hits returns the count of the current window for key without adding to it.
func (w *FixedWindow) Hits(ctx context.Context, key string) (int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}
	return w.store.Increment(ctx, key, 0, w.config.Window)
}
