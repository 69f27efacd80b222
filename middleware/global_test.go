package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/middleware"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *recorder) Notify(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func TestGlobalRateLimit(t *testing.T) {
	t.Parallel()

	clk := newClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreClock(clk.Now))
	limiter, err := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{Limit: 2, Window: time.Minute})
	require.NoError(t, err)

	alerts := &recorder{}
	next := &okHandler{}
	h := middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{
		Limiter:   limiter,
		Notifier:  alerts,
		Formatter: &notify.Formatter{AppName: "shop", Env: "test"},
	})(next)

	// Different clients share the window.
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code)
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.2:1").Code)

	for range 3 {
		w := request(h, "192.0.2.3:1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, map[string]string{"message": "Too many requests globally. Please try again later."}, body)
	}
	assert.Equal(t, int32(2), next.calls.Load())

	texts := alerts.all()
	require.Len(t, texts, 1, "one alert per window")
	assert.Contains(t, texts[0], "Global limit exceeded: 2 requests per 1 min")
	assert.Contains(t, texts[0], "/api/send")
	assert.Contains(t, texts[0], "shop")

	clk.Advance(time.Minute)
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code, "new window")
	assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(h, "192.0.2.1:1").Code)
	assert.Len(t, alerts.all(), 2)
}

func TestGlobalRateLimit_Headers(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewFixedWindow(ratelimiter.NewMemoryStore(), ratelimiter.WindowConfig{Limit: 1, Window: time.Minute})
	require.NoError(t, err)
	h := middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{Limiter: limiter, SetHeaders: true})(&okHandler{})

	w := request(h, "192.0.2.1:1")
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = request(h, "192.0.2.1:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestGlobalRateLimit_StoreError(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewFixedWindow(failingStore{err: assert.AnError}, ratelimiter.WindowConfig{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	next := &okHandler{}
	h := middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{Limiter: limiter})(next)
	assert.Equal(t, http.StatusInternalServerError, request(h, "192.0.2.1:1").Code)
	assert.Zero(t, next.calls.Load())
}

func TestGlobalRateLimit_Skip(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewFixedWindow(ratelimiter.NewMemoryStore(), ratelimiter.WindowConfig{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	h := middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{
		Limiter: limiter,
		Skip:    func(*http.Request) bool { return true },
	})(&okHandler{})
	for range 3 {
		assert.Equal(t, http.StatusOK, request(h, "192.0.2.1:1").Code)
	}
}

func TestGlobalLimitTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Global limit exceeded: 100 requests per 1 min",
		middleware.GlobalLimitTitle(ratelimiter.WindowConfig{Limit: 100, Window: time.Minute}))
	assert.Equal(t, "Global limit exceeded: 5 requests per 0.5 min",
		middleware.GlobalLimitTitle(ratelimiter.WindowConfig{Limit: 5, Window: 30 * time.Second}))
	assert.Equal(t, "Global limit exceeded: 1000 requests per 15 min",
		middleware.GlobalLimitTitle(ratelimiter.WindowConfig{Limit: 1000, Window: 15 * time.Minute}))
}

func TestGlobalRateLimit_RequiresLimiter(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{})
	})
}
