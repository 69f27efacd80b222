// Package cookie manages HTTP cookies with HMAC signing and secret rotation.
//
// Basic usage:
//
//	m, err := cookie.New([]string{"a-secret-of-at-least-32-characters"})
//	if err != nil {
//		return err
//	}
//
//	// Signed cookies detect tampering
//	err = m.SetSigned(w, "_csrf", secret, cookie.WithMaxAge(3600))
//	value, err := m.GetSigned(r, "_csrf")
//	if errors.Is(err, cookie.ErrInvalidSignature) {
//		// forged or signed with a retired secret
//	}
//
// Secrets rotate by prepending a new one: the first secret signs, all of them
// verify. From the environment (COOKIE_SECRETS, COOKIE_SECURE, ...):
//
//	var cfg cookie.Config
//	config.MustLoad(&cfg)
//	m, err := cookie.NewFromConfig(cfg)
//
// Cookies default to Path=/, HttpOnly and SameSite=Lax. Values whose header
// exceeds MaxCookieSize are rejected with ErrCookieTooLarge.
package cookie
