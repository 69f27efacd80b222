package ratelimiter

import (
	"fmt"
	"time"
)

// Config describes a token bucket: Capacity tokens at most, RefillRate tokens
// added every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

// Validate reports whether the bucket parameters are usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// fullRefill is the time after which an untouched bucket is full again.
func (c Config) fullRefill() time.Duration {
	return c.RefillInterval * time.Duration(c.Capacity/c.RefillRate+1)
}

// WindowConfig describes a fixed window counter: at most Limit hits per Window.
type WindowConfig struct {
	Limit  int
	Window time.Duration
}

// Validate reports whether the window parameters are usable.
func (c WindowConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidConfig)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	return nil
}
