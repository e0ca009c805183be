package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only while it still carries the holder's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX lock shared by every instance using the same Redis.
type RedisLocker struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, logger: logger}
}

// TryLock takes key for ttl. The returned release is a no-op once the lock expired and
// someone else took it.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}

// MemoryLocker is the single-instance fallback backed by a MemoryStore.
type MemoryLocker struct {
	store *MemoryStore
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(store *MemoryStore) *MemoryLocker {
	return &MemoryLocker{store: store}
}

// TryLock takes key for ttl
func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	if !l.store.SetNX(key, token, ttl) {
		return nil, false, nil
	}
	return func() { l.store.DeleteIf(key, token) }, true, nil
}
