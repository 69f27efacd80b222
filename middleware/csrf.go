package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/notifykit/core/cookie"
	"github.com/dmitrymomot/notifykit/core/logger"
)

const (
	// DefaultCSRFCookie holds the signed per-client CSRF secret.
	DefaultCSRFCookie = "_csrf"
	// DefaultCSRFHeader carries the token on unsafe requests.
	DefaultCSRFHeader = "X-CSRF-Token"
	// DefaultCSRFMessage is the body message of rejected requests.
	DefaultCSRFMessage = "Invalid CSRF token"
)

type csrfContextKey struct{}

// CSRFConfig configures the CSRF protection middleware.
type CSRFConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Cookies signs and reads the secret cookie (required)
	Cookies *cookie.Manager
	// CookieName of the secret cookie (default: "_csrf")
	CookieName string
	// HeaderName carrying the token (default: "X-CSRF-Token")
	HeaderName string
	// Message returned with 401 (default: "Invalid CSRF token")
	Message string
	// Logger receives rejections (default: discard)
	Logger *slog.Logger
}

// CSRF implements double-submit protection. Safe requests (GET, HEAD,
// OPTIONS, TRACE) get a signed secret cookie when they lack one, and a token
// derived from it in the request context (see GetCSRFToken). Unsafe requests
// must carry a matching token in the header; otherwise they are answered with
// 401.
// Panics if no cookie manager is provided.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.Cookies == nil {
		panic("csrf middleware: cookie manager is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookie
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeader
	}
	if cfg.Message == "" {
		cfg.Message = DefaultCSRFMessage
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	log := cfg.Logger.With(logger.Component("csrf"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			secret, err := cfg.Cookies.GetSigned(r, cfg.CookieName)

			if isSafeMethod(r.Method) {
				if err != nil {
					if secret, err = randomToken(); err == nil {
						err = cfg.Cookies.SetSigned(w, cfg.CookieName, secret)
					}
					if err != nil {
						log.ErrorContext(r.Context(), "Failed to issue CSRF secret", logger.Error(err))
						writeJSON(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
						return
					}
				}
				token, err := csrfToken(secret)
				if err != nil {
					log.ErrorContext(r.Context(), "Failed to issue CSRF token", logger.Error(err))
					writeJSON(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
					return
				}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey{}, token)))
				return
			}

			if err == nil && validCSRFToken(secret, r.Header.Get(cfg.HeaderName)) {
				next.ServeHTTP(w, r)
				return
			}

			if err == nil {
				err = errors.New("token mismatch")
			}
			ip, _ := GetClientIP(r.Context())
			log.WarnContext(r.Context(), "CSRF check failed",
				logger.Error(err),
				logger.ClientIP(ip),
				logger.Path(r.URL.Path),
			)
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: cfg.Message})
		})
	}
}

// GetCSRFToken returns the token issued for a safe request.
func GetCSRFToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(csrfContextKey{}).(string)
	return token, ok
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func randomToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// csrfToken returns "<salt>.<hmac(secret, salt)>". A fresh salt per token
// keeps tokens of one client distinct.
func csrfToken(secret string) (string, error) {
	salt, err := randomToken()
	if err != nil {
		return "", err
	}
	return salt + "." + csrfMAC(secret, salt), nil
}

func validCSRFToken(secret, token string) bool {
	salt, sum, ok := strings.Cut(token, ".")
	if !ok || salt == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sum), []byte(csrfMAC(secret, salt))) == 1
}

func csrfMAC(secret, salt string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(salt))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
