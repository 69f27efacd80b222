package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// SlowDownConfig describes progressive delays: within each Window the first
// DelayAfter hits of a key pass untouched, every further hit waits DelayStep
// longer than the previous one, capped by MaxDelay when set.
type SlowDownConfig struct {
	Window     time.Duration
	DelayAfter int
	DelayStep  time.Duration
	MaxDelay   time.Duration
}

// Validate reports whether the parameters are usable.
func (c SlowDownConfig) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	if c.DelayAfter < 0 {
		return fmt.Errorf("%w: delay after must not be negative", ErrInvalidConfig)
	}
	if c.DelayStep <= 0 {
		return fmt.Errorf("%w: delay step must be positive", ErrInvalidConfig)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("%w: max delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SlowDown computes request delays over a WindowStore.
type SlowDown struct {
	store  WindowStore
	config SlowDownConfig
}

// NewSlowDown creates a delay calculator.
func NewSlowDown(store WindowStore, config SlowDownConfig) (*SlowDown, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SlowDown{store: store, config: config}, nil
}

// Delay records a hit for key and returns how long the request should wait
// together with the hit count in the current window.
func (s *SlowDown) Delay(ctx context.Context, key string) (time.Duration, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	count, _, err := s.store.Increment(ctx, key, 1, s.config.Window)
	if err != nil {
		return 0, 0, err
	}
	return s.DelayFor(count), count, nil
}

// DelayFor returns the delay of the count-th hit in a window.
func (s *SlowDown) DelayFor(count int) time.Duration {
	over := count - s.config.DelayAfter
	if over <= 0 {
		return 0
	}
	d := time.Duration(over) * s.config.DelayStep
	if s.config.MaxDelay > 0 && d > s.config.MaxDelay {
		return s.config.MaxDelay
	}
	return d
}

// Reset clears the window for key.
func (s *SlowDown) Reset(ctx context.Context, key string) error {
	return s.store.Reset(ctx, key)
}
