package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tollgate:session"

// RedisTable stores sessions as JSON values without a TTL, so they survive
// restarts of the service but not a flush of Redis.
type RedisTable struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisTable(client redis.UniversalClient, prefix string) *RedisTable {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisTable{redis: client, prefix: prefix}
}

func (t *RedisTable) key(fingerprint string) string {
	return t.prefix + ":" + fingerprint
}

func (t *RedisTable) Put(ctx context.Context, fingerprint string, s domain.Session) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return t.redis.Set(ctx, t.key(fingerprint), blob, 0).Err()
}

func (t *RedisTable) Get(ctx context.Context, fingerprint string) (domain.Session, error) {
	blob, err := t.redis.Get(ctx, t.key(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}

	var s domain.Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (t *RedisTable) Delete(ctx context.Context, fingerprint string) error {
	n, err := t.redis.Del(ctx, t.key(fingerprint)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

var _ Table = (*RedisTable)(nil)
