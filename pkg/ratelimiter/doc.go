// Package ratelimiter provides request throttling primitives with pluggable
// storage backends.
//
// Three limiters share one storage layer:
//
//   - Bucket is a token bucket: Capacity tokens, RefillRate tokens added every
//     RefillInterval. It allows bursts while keeping an average rate.
//   - FixedWindow counts hits in consecutive windows and allows Limit of them
//     per window. With a constant key it acts as a global limiter.
//   - SlowDown does not reject; it computes a growing delay once a key has
//     made more than DelayAfter hits in the current window.
//
// MemoryStore keeps state in the process. RedisStore keeps it in Redis so that
// several instances share limits; every operation is a single Lua script.
//
// # Usage
//
//	store := ratelimiter.NewMemoryStore()
//	go store.Start(ctx)
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, "user:123")
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		log.Printf("rate limited, retry after %v", result.RetryAfter())
//	}
//
// A global window of 10 requests per minute:
//
//	global, _ := ratelimiter.NewFixedWindow(store, ratelimiter.WindowConfig{Limit: 10, Window: time.Minute})
//	res, _ := global.Allow(ctx, "global")
//	if res.Remaining == -1 {
//		// first rejected request of this window
//	}
//
// Result.Remaining may be negative. Rejected calls still count, so a client
// that keeps hammering stays limited.
//
// # Storage
//
// A store used by several limiters must see distinct keys per limiter; the
// middleware package prefixes keys for that reason. MemoryStore drops idle
// buckets and closed windows while its cleanup loop runs (Start, Run).
package ratelimiter
