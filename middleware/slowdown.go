package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

// SlowDownConfig configures the progressive delay middleware.
type SlowDownConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// SlowDown computes the delays (required)
	SlowDown *ratelimiter.SlowDown
	// KeyExtractor defines how to extract the key from requests (default: client IP)
	KeyExtractor func(r *http.Request) string
	// Logger receives store failures (default: discard)
	Logger *slog.Logger
}

// SlowDown delays requests of clients that exceed the free hits of a window.
// Store failures are logged and the request passes without delay. When the
// request context ends during the wait, nothing is served.
// Panics if no SlowDown is provided.
func SlowDown(cfg SlowDownConfig) func(http.Handler) http.Handler {
	if cfg.SlowDown == nil {
		panic("slowdown middleware: slowdown is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = clientKey
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	log := cfg.Logger.With(logger.Component("slowdown"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := cfg.KeyExtractor(r)
			delay, hits, err := cfg.SlowDown.Delay(ctx, "slowdown:"+key)
			if err != nil {
				log.ErrorContext(ctx, "Slow down store failed", logger.ClientIP(key), logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if delay > 0 {
				log.DebugContext(ctx, "Delaying request",
					logger.ClientIP(key),
					logger.Count("hits", hits),
					logger.Duration(delay),
				)
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
