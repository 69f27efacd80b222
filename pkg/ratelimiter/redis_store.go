package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces limiter keys.
const DefaultRedisPrefix = "ratelimit:"

// tokenBucketScript mirrors MemoryStore.ConsumeTokens.
// KEYS[1] bucket hash; ARGV capacity, refill rate, interval ms, tokens, now ms, ttl ms.
// Returns {remaining, reset at ms}.
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local tokens = tonumber(ARGV[4])
local now = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local current = tonumber(state[1])
local refill = tonumber(state[2])
if current == nil or refill == nil then
	current = capacity
	refill = now
end

local intervals = math.floor((now - refill) / interval)
local maxIntervals = math.floor(capacity / rate) + 1
if intervals > maxIntervals then
	intervals = maxIntervals
end
if intervals > 0 then
	current = math.min(current + intervals * rate, capacity)
	refill = now
end

current = current - tokens
redis.call('HSET', KEYS[1], 'tokens', current, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], ttl)
return {current, refill + interval}
`)

// windowScript adds ARGV[2] hits to a counter that expires after ARGV[1] ms.
// Returns {count, ttl ms}.
var windowScript = redis.NewScript(`
local n = tonumber(ARGV[2])
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if n == 0 then
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		return {0, tonumber(ARGV[1])}
	end
	return {count, ttl}
end

count = redis.call('INCRBY', KEYS[1], n)
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore implements Store and WindowStore on Redis, so limits hold across
// application instances. Each operation is one Lua script call.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var (
	_ Store       = (*RedisStore)(nil)
	_ WindowStore = (*RedisStore)(nil)
)

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Defaults to DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		rs.prefix = prefix
	}
}

// WithRedisClock overrides the clock used for refill calculation.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(rs *RedisStore) {
		if now != nil {
			rs.now = now
		}
	}
}

// NewRedisStore creates a store over client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	rs := &RedisStore{client: client, prefix: DefaultRedisPrefix, now: time.Now}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// ConsumeTokens implements Store.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	ttl := config.fullRefill() + config.RefillInterval
	res, err := tokenBucketScript.Run(ctx, rs.client, []string{rs.bucketKey(key)},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		rs.now().UnixMilli(),
		ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

// Increment implements WindowStore.
func (rs *RedisStore) Increment(ctx context.Context, key string, n int, window time.Duration) (int, time.Time, error) {
	res, err := windowScript.Run(ctx, rs.client, []string{rs.windowKey(key)}, window.Milliseconds(), n).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, res)
	}
	return int(res[0]), rs.now().Add(time.Duration(res[1]) * time.Millisecond), nil
}

// Reset deletes the bucket and the window of key.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.bucketKey(key), rs.windowKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) bucketKey(key string) string {
	return rs.prefix + "tb:" + key
}

func (rs *RedisStore) windowKey(key string) string {
	return rs.prefix + "fw:" + key
}
