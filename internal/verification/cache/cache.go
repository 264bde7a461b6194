// Package cache holds a short-lived Redis snapshot of verification records
// for display reads. Checkout-time eligibility evaluation never reads the
// cache; it goes to the store for a consistent snapshot.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

const defaultTTL = 30 * time.Second

// StatusCache caches records keyed by user with a short TTL. Every record
// mutation invalidates the entry, so staleness is bounded by TTL even if an
// invalidation is lost.
type StatusCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Option configures a StatusCache.
type Option func(*StatusCache)

// WithTTL overrides the cache entry TTL when greater than zero.
func WithTTL(ttl time.Duration) Option {
	return func(c *StatusCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New constructs a StatusCache. A nil client yields a nil cache, which every
// method treats as a miss so callers need no guards.
func New(client *goredis.Client, opts ...Option) *StatusCache {
	if client == nil {
		return nil
	}
	c := &StatusCache{client: client, ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func key(userID string) string {
	return "verification:status:" + userID
}

// Get returns the cached record or sentinel.ErrNotFound on a miss.
func (c *StatusCache) Get(ctx context.Context, userID string) (*models.Record, error) {
	if c == nil {
		return nil, sentinel.ErrNotFound
	}
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var record models.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		// Treat a corrupt entry as a miss; the next Set overwrites it.
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

// Set stores a record snapshot.
func (c *StatusCache) Set(ctx context.Context, record *models.Record) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(record.UserID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the user's cached entry.
func (c *StatusCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
