package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

// Defaults of Throttle.
const (
	DefaultLimit      = 10
	DefaultWindow     = time.Minute
	DefaultDelayAfter = 5
	DefaultDelay      = time.Second
)

// ThrottleConfig configures the combined per-client slow down and rate limit.
// Zero values take the defaults above.
type ThrottleConfig struct {
	Limit        int
	Window       time.Duration
	DelayAfter   int
	Delay        time.Duration
	MaxDelay     time.Duration
	KeyExtractor func(r *http.Request) string
	Logger       *slog.Logger
}

// Throttle builds the usual per-client protection for an endpoint: requests
// past DelayAfter in a window are delayed progressively, requests past Limit
// are rejected with 429. Both share store under separate key prefixes.
func Throttle(store ratelimiter.WindowStore, cfg ThrottleConfig) (func(http.Handler) http.Handler, error) {
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.DelayAfter == 0 {
		cfg.DelayAfter = DefaultDelayAfter
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}

	slow, err := ratelimiter.NewSlowDown(store, ratelimiter.SlowDownConfig{
		Window:     cfg.Window,
		DelayAfter: cfg.DelayAfter,
		DelayStep:  cfg.Delay,
		MaxDelay:   cfg.MaxDelay,
	})
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{
		Limit:  cfg.Limit,
		Window: cfg.Window,
	})
	if err != nil {
		return nil, err
	}

	slowDown := SlowDown(SlowDownConfig{
		SlowDown:     slow,
		KeyExtractor: cfg.KeyExtractor,
		Logger:       cfg.Logger,
	})
	rateLimit := RateLimit(RateLimitConfig{
		Limiter:      limiter,
		KeyExtractor: cfg.KeyExtractor,
		SetHeaders:   true,
		Logger:       cfg.Logger,
	})

	return func(next http.Handler) http.Handler {
		return slowDown(rateLimit(next))
	}, nil
}
