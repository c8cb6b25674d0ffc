package limiter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tollgate:attempts"

// RedisLimiter keeps fixed-window counters in Redis so several processes can
// share one budget per client.
type RedisLimiter struct {
	redis  redis.UniversalClient
	rules  Rules
	prefix string
}

func NewRedisLimiter(client redis.UniversalClient, rules Rules, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisLimiter{redis: client, rules: rules, prefix: prefix}
}

func (l *RedisLimiter) key(clientKey string, class Class) string {
	return l.prefix + ":" + string(class) + ":" + clientKey
}

func (l *RedisLimiter) Check(ctx context.Context, clientKey string, class Class) (Decision, error) {
	rule, err := l.rules.lookup(class)
	if err != nil {
		return Decision{}, err
	}

	key := l.key(clientKey, class)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.PExpire(ctx, key, rule.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}

	d := Decision{Allowed: true, Count: int(count), Limit: rule.Max}
	if count <= int64(rule.Max) {
		return d, nil
	}

	d.Allowed = false
	ttl, err := l.redis.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if ttl < 0 {
		// A counter without expiry would never reset.
		if err := l.redis.PExpire(ctx, key, rule.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		ttl = rule.Window
	}
	d.RetryAfter = ttl
	return d, nil
}

var _ Limiter = (*RedisLimiter)(nil)
