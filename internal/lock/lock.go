// Package lock provides per-record exclusion tokens. A token is held
// for the duration of one load-modify-persist sequence so that two
// concurrent retries, or a retry racing a live callback, never
// interleave their reads and writes for the same record.
package lock

import (
	"context"
	"sync"
	"time"

	"paylog/internal/cache"
)

// Locker hands out non-blocking exclusion tokens keyed by record id.
// TryAcquire returns false immediately when the token is already held;
// callers report ErrRetryInProgress rather than queueing.
type Locker interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// MemoryLocker keys exclusion tokens in process memory. Suitable for a
// single instance deployment and for tests.
type MemoryLocker struct {
	held sync.Map
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{}
}

// TryAcquire takes the token for key if free.
func (l *MemoryLocker) TryAcquire(_ context.Context, key string) (bool, error) {
	_, loaded := l.held.LoadOrStore(key, struct{}{})
	return !loaded, nil
}

// Release frees the token for key.
func (l *MemoryLocker) Release(_ context.Context, key string) {
	l.held.Delete(key)
}

// RedisLocker keys exclusion tokens in redis via SETNX so the
// single-flight guarantee holds across instances. The TTL bounds how
// long a crashed holder can wedge a record.
type RedisLocker struct {
	client *cache.Client
	ttl    time.Duration
}

// NewRedisLocker creates a redis-backed locker.
func NewRedisLocker(client *cache.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// TryAcquire takes the token for key if free.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, "lock:"+key, []byte("1"), l.ttl)
}

// Release frees the token for key.
func (l *RedisLocker) Release(ctx context.Context, key string) {
	_ = l.client.Delete(ctx, "lock:"+key)
}
