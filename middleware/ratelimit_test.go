package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/middleware"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

func newWindow(t *testing.T, store ratelimiter.WindowStore, limit int) *ratelimiter.FixedWindow {
	t.Helper()
	w, err := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{Limit: limit, Window: time.Minute})
	require.NoError(t, err)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	next := &okHandler{}
	h := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:    newWindow(t, ratelimiter.NewMemoryStore(), 3),
		SetHeaders: true,
	})(next)

	for i := range 3 {
		w := request(h, "192.168.1.100:54321")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(2-i), w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
		assert.Empty(t, w.Header().Get("Retry-After"))
	}

	w := request(h, "192.168.1.100:54321")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, middleware.DefaultRateLimitMessage, body["message"])
	assert.Greater(t, body["retry_after"], float64(0))

	assert.Equal(t, int32(3), next.calls.Load())

	// Other clients keep their own budget.
	assert.Equal(t, http.StatusOK, request(h, "192.168.1.101:54321").Code)
}

func TestRateLimit_UsesClientIPFromContext(t *testing.T) {
	t.Parallel()

	limiter := newWindow(t, ratelimiter.NewMemoryStore(), 1)
	h := middleware.ClientIP()(middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter})(&okHandler{}))

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:80"
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1, 10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"))
}

func TestRateLimit_Headers(t *testing.T) {
	t.Parallel()

	h := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: newWindow(t, ratelimiter.NewMemoryStore(), 1),
	})(&okHandler{})

	w := request(h, "192.0.2.1:1")
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"), "headers are opt-in")
}

func TestRateLimit_BucketLimiter(t *testing.T) {
	t.Parallel()

	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	h := middleware.RateLimit(middleware.RateLimitConfig{Limiter: bucket, SetHeaders: true})(&okHandler{})
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code)
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code)

	w := request(h, "192.0.2.1:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_Custom(t *testing.T) {
	t.Parallel()

	var gotKey string
	h := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: newWindow(t, ratelimiter.NewMemoryStore(), 1),
		KeyExtractor: func(r *http.Request) string {
			gotKey = r.Header.Get("X-API-Key")
			return gotKey
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, result *ratelimiter.Result) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		Skip: func(r *http.Request) bool { return r.URL.Path == "/health" },
	})(&okHandler{})

	send := func(path string) int {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("X-API-Key", "key-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("/send"))
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, http.StatusServiceUnavailable, send("/send"))
	assert.Equal(t, http.StatusOK, send("/health"))
}

func TestRateLimit_LimiterError(t *testing.T) {
	t.Parallel()

	next := &okHandler{}
	h := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: newWindow(t, failingStore{err: errors.New("store down")}, 5),
	})(next)

	w := request(h, "192.0.2.1:1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, next.calls.Load())
}

func TestRateLimit_RequiresLimiter(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "ratelimit middleware: limiter is required", func() {
		middleware.RateLimit(middleware.RateLimitConfig{})
	})
}
