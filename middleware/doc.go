// Package middleware provides net/http middlewares that protect delivery
// endpoints from abuse.
//
//   - ClientIP stores the client address in the request context.
//   - RateLimit rejects clients over a per-key limit with 429 and optional
//     X-RateLimit-* headers.
//   - GlobalRateLimit caps the total request rate and alerts the operator once
//     per window when the cap is hit.
//   - SlowDown delays clients progressively after a number of free requests.
//   - Throttle combines SlowDown and RateLimit with the usual defaults of
//     10 requests per minute, delaying by 1s more for each request after the 5th.
//
// All middlewares have the signature func(http.Handler) http.Handler:
//
//	store := ratelimiter.NewMemoryStore()
//	throttle, err := middleware.Throttle(store, middleware.ThrottleConfig{})
//	if err != nil {
//		return err
//	}
//	global, _ := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{Limit: 1000, Window: time.Minute})
//
//	h := middleware.ClientIP()(
//		middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{
//			Limiter:   global,
//			Notifier:  telegramClient,
//			Formatter: formatter,
//		})(throttle(mux)),
//	)
//
// Limiter keys are namespaced per middleware so one store can serve all of them.
package middleware
