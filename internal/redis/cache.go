package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"voyago/internal/domain"
)

// TripCache caches full trip records in Redis. Generated trips are
// immutable until regenerated, so a short TTL is enough to absorb
// repeated reads without staleness concerns.
type TripCache struct {
	client *redis.Client
}

// NewTripCache creates a new TripCache.
func NewTripCache(client *redis.Client) *TripCache {
	return &TripCache{client: client}
}

// TripCacheTTL bounds staleness between a regeneration and the next read.
const TripCacheTTL = 60 * time.Second

const tripCachePrefix = "cache:trip:"

// Get retrieves a trip from cache. Returns nil on cache miss.
func (c *TripCache) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	data, err := c.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trip domain.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// Set stores a trip in cache.
func (c *TripCache) Set(ctx context.Context, trip *domain.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// Invalidate removes a trip from cache.
func (c *TripCache) Invalidate(ctx context.Context, tripID string) error {
	return c.client.Del(ctx, tripCachePrefix+tripID).Err()
}
