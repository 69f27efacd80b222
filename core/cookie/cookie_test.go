package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/cookie"
)

const (
	testSecret  = "test-secret-key-32-characters!!!"
	testSecret2 = "another-secret-key-32-chars!!!!!"
)

// replay turns the cookies set on w into a request carrying them.
func replay(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	secret, err := cookie.GenerateSecret()
	require.NoError(t, err)
	_, err = cookie.New([]string{secret})
	assert.NoError(t, err)
}

func TestManager_SetGetDelete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret}, cookie.WithSecure(true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "test", "value123", cookie.WithMaxAge(60)))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 60, cookies[0].MaxAge)

	value, err := m.Get(replay(w), "test")
	require.NoError(t, err)
	assert.Equal(t, "value123", value)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "test")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	w = httptest.NewRecorder()
	m.Delete(w, "test")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestManager_TooLarge(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	err = m.Set(httptest.NewRecorder(), "big", strings.Repeat("x", cookie.MaxCookieSize))
	var tooLarge cookie.ErrCookieTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "big", tooLarge.Name)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(w, "_csrf", "s3cr3t|with|pipes"))

	value, err := m.GetSigned(replay(w), "_csrf")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t|with|pipes", value)

	tests := []struct {
		name  string
		value string
		err   error
	}{
		{"no separator", "abc", cookie.ErrInvalidFormat},
		{"bad encoding", "!!!|sig", cookie.ErrInvalidFormat},
		{"forged signature", "c2VjcmV0|Zm9yZ2Vk", cookie.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "_csrf", Value: tt.value})
			_, err := m.GetSigned(r, "_csrf")
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestManager_SecretRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	require.NoError(t, old.SetSigned(w, "token", "v"))

	rotated, err := cookie.New([]string{testSecret2, testSecret})
	require.NoError(t, err)
	value, err := rotated.GetSigned(replay(w), "token")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	retired, err := cookie.New([]string{testSecret2})
	require.NoError(t, err)
	_, err = retired.GetSigned(replay(w), "token")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  " , " + testSecret + ", ",
		Path:     "/api",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "a", "b"))
	c := w.Result().Cookies()[0]
	assert.Equal(t, "/api", c.Path)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	_, err = cookie.NewFromConfig(cookie.Config{})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
