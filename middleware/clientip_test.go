package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/middleware"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	var captured string
	h := middleware.ClientIP()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, ok := middleware.GetClientIP(r.Context())
		assert.True(t, ok)
		captured = ip
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.10, 10.0.0.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "203.0.113.10", captured)
	assert.Empty(t, w.Header().Get("X-Client-IP"))
}

func TestClientIPWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("response header", func(t *testing.T) {
		t.Parallel()

		h := middleware.ClientIPWithConfig(middleware.ClientIPConfig{
			StoreInHeader: true,
			HeaderName:    "X-Real-Client",
		})(&okHandler{})

		w := request(h, "192.0.2.4:80")
		assert.Equal(t, "192.0.2.4", w.Header().Get("X-Real-Client"))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		var found bool
		h := middleware.ClientIPWithConfig(middleware.ClientIPConfig{
			Skip: func(*http.Request) bool { return true },
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, found = middleware.GetClientIP(r.Context())
		}))

		request(h, "192.0.2.4:80")
		assert.False(t, found)
	})
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	_, ok := middleware.GetClientIP(context.Background())
	assert.False(t, ok)

	ip, ok := middleware.GetClientIP(middleware.WithClientIP(context.Background(), "198.51.100.1"))
	assert.True(t, ok)
	assert.Equal(t, "198.51.100.1", ip)
}
