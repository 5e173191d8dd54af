// Package cache stores read projections in Redis. Entries are JSON blobs with a TTL;
// the catalog version counter lets listing keys go stale without scanning.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/admissions-backend/internal/config"
)

// ProjectionCache is the Redis-backed projection cache.
type ProjectionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProjectionCache creates a ProjectionCache whose entries expire after ttl.
func NewProjectionCache(rdb *redis.Client, ttl time.Duration) *ProjectionCache {
	return &ProjectionCache{rdb: rdb, ttl: ttl}
}

// GetJSON decodes the entry at key into dst. It reports false on a miss.
func (c *ProjectionCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt entry is a miss; the caller rebuilds and overwrites it.
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON stores v at key with the cache TTL.
func (c *ProjectionCache) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes the given keys.
func (c *ProjectionCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// CatalogVersion returns the current catalog version, 0 if never bumped.
func (c *ProjectionCache) CatalogVersion(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.CatalogVersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpCatalogVersion advances the catalog version, orphaning every cached listing.
func (c *ProjectionCache) BumpCatalogVersion(ctx context.Context) (int64, error) {
	return c.rdb.Incr(ctx, config.CacheKey.CatalogVersionKey()).Result()
}
