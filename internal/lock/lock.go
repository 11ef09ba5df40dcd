// Package lock serializes writes per owner across service instances.
//
// RedisLocker is used when Redis is configured. NopLocker is the
// single-instance default; the unique index on the owning key still keeps
// one row per owner without it.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the lock.
var ErrNotObtained = errors.New("lock not obtained")

// ReleaseFunc releases a held lock.
type ReleaseFunc func(context.Context) error

// Locker obtains a named lock for at most ttl.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// NopLocker always succeeds.
type NopLocker struct{}

func (NopLocker) Obtain(context.Context, string, time.Duration) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// RedisLocker obtains locks through bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	retry  redislock.RetryStrategy
}

// NewRedisLocker wraps rdb. Keys are namespaced with prefix. Obtain retries
// briefly so back-to-back writes for one owner queue instead of failing.
func NewRedisLocker(rdb redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		prefix: prefix,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	lk, err := l.client.Obtain(ctx, l.prefix+key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// NewRedisClient opens a client for addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
