// Package cache provides a read-through cache for event lookups. Spec §5
// forbids shared in-process mutable state ("any in-memory lock would be a
// correctness illusion in a multi-instance deployment"), so unlike the
// teacher's original in-process map this is backed by Redis: every
// instance of the service sees the same cache and the same invalidation.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get looks up key and unmarshals the stored JSON into dst. Reports
// whether the key was present; any Redis error is treated as a miss so a
// cache outage degrades to reading the Store, never to an error response.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *Cache) Set(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) {
	c.rdb.Del(ctx, key)
}
