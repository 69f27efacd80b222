package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/cookie"
	"github.com/dmitrymomot/notifykit/middleware"
)

const cookieSecret = "test-secret-key-32-characters!!!"

func newCSRF(t *testing.T) (http.Handler, *okHandler) {
	t.Helper()
	m, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)

	next := &okHandler{}
	issue := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := middleware.GetCSRFToken(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(token))
	})
	return middleware.CSRF(middleware.CSRFConfig{Cookies: m})(issue), next
}

// fetchToken performs a safe request and returns the issued token and cookies.
func fetchToken(t *testing.T, h http.Handler, cookies ...*http.Cookie) (string, []*http.Cookie) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String(), w.Result().Cookies()
}

func postWith(h http.Handler, token string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("{}"))
	if token != "" {
		r.Header.Set(middleware.DefaultCSRFHeader, token)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	h, next := newCSRF(t)
	token, cookies := fetchToken(t, h)
	require.NotEmpty(t, token)
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.DefaultCSRFCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w := postWith(h, token, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), next.calls.Load())

	// A client holding the cookie keeps its secret and gets fresh tokens.
	token2, reissued := fetchToken(t, h, cookies...)
	assert.Empty(t, reissued)
	assert.NotEqual(t, token, token2)
	assert.Equal(t, http.StatusOK, postWith(h, token2, cookies).Code)
	assert.Equal(t, http.StatusOK, postWith(h, token, cookies).Code)
}

func TestCSRF_Rejects(t *testing.T) {
	t.Parallel()

	h, next := newCSRF(t)
	token, cookies := fetchToken(t, h)
	otherToken, otherCookies := fetchToken(t, h)

	forged := []*http.Cookie{{Name: middleware.DefaultCSRFCookie, Value: "c2VjcmV0|Zm9yZ2Vk"}}

	tests := []struct {
		name    string
		token   string
		cookies []*http.Cookie
	}{
		{"no token no cookie", "", nil},
		{"token without cookie", token, nil},
		{"cookie without token", "", cookies},
		{"malformed token", "garbage", cookies},
		{"token of another client", otherToken, cookies},
		{"cookie of another client", token, otherCookies},
		{"forged cookie", token, forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWith(h, tt.token, tt.cookies)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, middleware.DefaultCSRFMessage, body["message"])
		})
	}
	assert.Zero(t, next.calls.Load())
}

func TestCSRF_Skip(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)
	next := &okHandler{}
	h := middleware.CSRF(middleware.CSRFConfig{
		Cookies: m,
		Skip:    func(r *http.Request) bool { return r.URL.Path == "/api/feedback" },
	})(next)

	assert.Equal(t, http.StatusOK, postWith(h, "", nil).Code)
}

func TestCSRF_RequiresCookieManager(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { middleware.CSRF(middleware.CSRFConfig{}) })
}
