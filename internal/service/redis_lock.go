package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisLockPrefix = "clinicbooking:slotlock:"

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisKeyLocker takes slot locks in Redis so several server processes
// sharing one store serialize on the same keys.
type RedisKeyLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// NewRedisKeyLocker parses url (redis://...) and pings the server.
func NewRedisKeyLocker(ctx context.Context, url string, ttl time.Duration, logger zerolog.Logger) (*RedisKeyLocker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisKeyLocker{client: client, ttl: ttl, retry: 10 * time.Millisecond, log: logger}, nil
}

func redisLockKey(key string) string {
	return redisLockPrefix + key
}

// Lock polls SET NX until it wins or ctx is done. The ttl bounds how long a
// crashed holder can block a slot.
func (l *RedisKeyLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	rkey := redisLockKey(key)

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, rkey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire slot lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// Release with a fresh context so a cancelled request still unlocks.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(rctx, l.client, []string{rkey}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release slot lock")
		}
	}, nil
}

func (l *RedisKeyLocker) Close() error {
	return l.client.Close()
}
