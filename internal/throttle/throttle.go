// Package throttle limits the number of requests each user can make per minute. It protects the service and the
// providers from bursts and is separate from the daily and monthly usage limits.
package throttle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/elucidare/tonewise/logging"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "throttle"})

const window = time.Minute

// Limiter decides whether a request may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Connect opens a connection to Redis and verifies that it's reachable.
func Connect(ctx context.Context, redisURI string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse the Redis URI")
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return client, nil
}

// RedisLimiter is a sliding-window limiter shared by every instance of the service.
type RedisLimiter struct {
	Client    *redis.Client
	PerMinute int
	Now       func() time.Time
}

// NewRedisLimiter creates a limiter that stores its windows in Redis.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{Client: client, PerMinute: perMinute, Now: time.Now}
}

// Allow records the request and reports whether it's within the limit. Redis failures are returned along with an
// affirmative answer so that the caller can fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.Now()
	redisKey := fmt.Sprintf("throttle:%s", key)

	pipe := l.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(now.Add(-window).UnixMilli(), 10))
	card := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, redisKey, 2*window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, errors.Wrapf(err, "unable to check the request rate for %s", key)
	}

	return card.Val() < int64(l.PerMinute), nil
}

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter for a single instance. It's used when Redis isn't configured.
type MemoryLimiter struct {
	PerMinute int
	Now       func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{PerMinute: perMinute, Now: time.Now, entries: make(map[string]*memoryEntry)}
}

// Allow records the request and reports whether it's within the limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		l.entries[key] = &memoryEntry{count: 1, resetAt: now.Add(window)}
		return true, nil
	}

	entry.count++
	return entry.count <= l.PerMinute, nil
}
