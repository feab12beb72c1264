package infra

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisLocker hands out short-lived distributed locks. Locks are advisory:
// callers keep database constraints as the authority and carry on without
// the lock when redis is unavailable.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain waits briefly for key and returns its release func.
// redislock.ErrNotObtained is returned when the wait runs out.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), 20),
	})
	if err != nil {
		return nil, err
	}
	return func() {
		// background ctx: release must run even if the request ctx is done
		if err := lock.Release(context.Background()); err != nil && err != redislock.ErrLockNotHeld {
			log.Warn().Err(err).Str("key", key).Msg("locker: release failed")
		}
	}, nil
}
