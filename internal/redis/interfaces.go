package redis

import (
	"context"
	"time"

	"voyago/internal/domain"
)

// TripCacheInterface defines the interface for trip caching.
type TripCacheInterface interface {
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
	Set(ctx context.Context, trip *domain.Trip) error
	Invalidate(ctx context.Context, tripID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireGenerationLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseGenerationLock(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TripCacheInterface = (*TripCache)(nil)
	_ LockStoreInterface = (*LockStore)(nil)
)
