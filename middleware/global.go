package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

// GlobalKey is the window key shared by all clients.
const GlobalKey = "global"

// DefaultGlobalRateLimitMessage is the body message of global rejections.
const DefaultGlobalRateLimitMessage = "Too many requests globally. Please try again later."

// GlobalRateLimitConfig configures the global rate limiting middleware.
type GlobalRateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Limiter counts requests of all clients in one window (required)
	Limiter *ratelimiter.FixedWindow
	// Notifier receives an error alert when a window first overflows (default: none)
	Notifier notify.Notifier
	// Formatter renders the alert (default: zero Formatter)
	Formatter *notify.Formatter
	// SetHeaders determines whether to include rate limit information in response headers
	SetHeaders bool
	// Logger receives limiter failures and overflow events (default: discard)
	Logger *slog.Logger
}

// GlobalRateLimit caps the number of requests across all clients per window.
// The first request over the limit in a window triggers one operator alert;
// every request over the limit is answered with 429.
// Panics if no limiter is provided.
func GlobalRateLimit(cfg GlobalRateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Limiter == nil {
		panic("global ratelimit middleware: limiter is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop
	}
	if cfg.Formatter == nil {
		cfg.Formatter = &notify.Formatter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	log := cfg.Logger.With(logger.Component("global_ratelimit"))
	title := GlobalLimitTitle(cfg.Limiter.Config())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.Allow(r.Context(), GlobalKey)
			if err != nil {
				log.ErrorContext(r.Context(), "Global rate limiter failed", logger.Error(err))
				writeJSON(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
				return
			}

			if cfg.SetHeaders {
				setRateLimitHeaders(w, result)
			}
			if result.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			// -1 marks the first rejection of the window.
			if result.Remaining == -1 {
				log.WarnContext(r.Context(), title)
				cfg.Notifier.Notify(context.WithoutCancel(r.Context()), cfg.Formatter.FormatAlert(notify.Alert{
					Type:  notify.Error,
					Title: title,
					Route: r.URL.Path,
				}))
			}

			writeJSON(w, http.StatusTooManyRequests, errorBody{Message: DefaultGlobalRateLimitMessage})
		})
	}
}

// GlobalLimitTitle renders the alert title for cfg, e.g.
// "Global limit exceeded: 100 requests per 1 min".
func GlobalLimitTitle(cfg ratelimiter.WindowConfig) string {
	minutes := strconv.FormatFloat(cfg.Window.Minutes(), 'f', -1, 64)
	return fmt.Sprintf("Global limit exceeded: %d requests per %s min", cfg.Limit, minutes)
}
