package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

// DefaultRateLimitMessage is the body message of per-client rejections.
const DefaultRateLimitMessage = "Too many requests, please try again later."

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Limiter is the rate limiting implementation to use
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defines how to extract the rate limiting key from requests (default: client IP)
	KeyExtractor func(r *http.Request) string
	// ErrorHandler defines how to handle rate limit violations (default: 429 with a JSON message)
	ErrorHandler func(w http.ResponseWriter, r *http.Request, result *ratelimiter.Result)
	// SetHeaders determines whether to include rate limit information in response headers
	SetHeaders bool
	// Logger receives limiter failures (default: discard)
	Logger *slog.Logger
}

// RateLimit enforces a per-client limit. Keys are namespaced with "ratelimit:"
// so one store can back several limiters.
// Panics if no limiter is provided.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, _ := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{Limit: 10, Window: time.Minute})
//	mux := http.NewServeMux()
//	handler := middleware.RateLimit(middleware.RateLimitConfig{
//		Limiter:    limiter,
//		SetHeaders: true,
//	})(mux)
//
// Limiter failures answer 500; requests are never let through unchecked.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = clientKey
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, result *ratelimiter.Result) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Message:    DefaultRateLimitMessage,
				RetryAfter: retryAfterSeconds(result),
			})
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	log := cfg.Logger.With(logger.Component("ratelimit"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyExtractor(r)
			result, err := cfg.Limiter.Allow(r.Context(), "ratelimit:"+key)
			if err != nil {
				log.ErrorContext(r.Context(), "Rate limiter failed", logger.ClientIP(key), logger.Error(err))
				writeJSON(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
				return
			}

			if cfg.SetHeaders {
				setRateLimitHeaders(w, result)
			}
			if !result.Allowed() {
				log.WarnContext(r.Context(), "Rate limit exceeded", logger.ClientIP(key))
				cfg.ErrorHandler(w, r, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders adds the X-RateLimit-* headers and, when blocked, Retry-After.
func setRateLimitHeaders(w http.ResponseWriter, result *ratelimiter.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	// Clamp remaining count to zero to prevent confusing negative values in API responses
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if s := retryAfterSeconds(result); s > 0 {
		h.Set("Retry-After", strconv.Itoa(s))
	}
}

func retryAfterSeconds(result *ratelimiter.Result) int {
	if result == nil || result.Allowed() {
		return 0
	}
	return int(math.Ceil(result.RetryAfter().Seconds()))
}
