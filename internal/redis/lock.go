package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireGenerationLock attempts to acquire the regeneration lock for a
// trip, so two concurrent requests cannot regenerate the same record.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireGenerationLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:generation:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseGenerationLock releases the regeneration lock for a trip.
func (s *LockStore) ReleaseGenerationLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:generation:%s", tripID)

	return s.client.Del(ctx, key).Err()
}
