package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"piquante/config"
	"piquante/internal/domain/service"
)

const keyPrefix = "piquante:login:"

// incrScript increments the counter and arms its expiry on the first hit of a window.
// It returns the new count and the remaining TTL in milliseconds.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter shares counters between replicas through Redis.
type RedisLimiter struct {
	client      *redis.Client
	size        time.Duration
	maxAttempts int
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(cfg *config.Config, client *redis.Client) *RedisLimiter {
	size, maxAttempts := limits(cfg)

	return &RedisLimiter{client: client, size: size, maxAttempts: maxAttempts}
}

var _ service.LoginLimiter = (*RedisLimiter)(nil)

// Allow atomically counts one attempt for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (service.LimitDecision, error) {
	res, err := incrScript.Run(ctx, l.client, []string{keyPrefix + key}, l.size.Milliseconds()).Slice()
	if err != nil {
		return service.LimitDecision{}, errors.Wrap(err, "run login limit script")
	}
	if len(res) != 2 {
		return service.LimitDecision{}, errors.Errorf("unexpected login limit reply: %v", res)
	}
	count, ok := res[0].(int64)
	if !ok {
		return service.LimitDecision{}, errors.Errorf("unexpected login limit count: %v", res[0])
	}
	ttl, ok := res[1].(int64)
	if !ok {
		return service.LimitDecision{}, errors.Errorf("unexpected login limit ttl: %v", res[1])
	}

	if int(count) > l.maxAttempts {
		return service.LimitDecision{
			Allowed:    false,
			RetryAfter: time.Duration(ttl) * time.Millisecond,
		}, nil
	}

	return service.LimitDecision{Allowed: true, Remaining: l.maxAttempts - int(count)}, nil
}
