package school

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "campuscard:school-info"

// CacheTTL bounds how stale rendered org metadata can be.
var CacheTTL = 5 * time.Minute

// Cached is a Redis read-through over another provider. Cache failures are
// soft: a broken Redis degrades to the underlying provider.
type Cached struct {
	next  Provider
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCached(next Provider, client redis.Cmdable) *Cached {
	return &Cached{next: next, redis: client, ttl: CacheTTL}
}

func (c *Cached) Get(ctx context.Context) (*Info, error) {
	raw, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var info Info
		if err := json.Unmarshal([]byte(raw), &info); err == nil {
			return &info, nil
		}
		// Corrupt cache entry: fall through and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		return c.next.Get(ctx)
	}

	info, err := c.next.Get(ctx)
	if err != nil || info == nil {
		return info, err
	}
	if payload, err := json.Marshal(info); err == nil {
		_ = c.redis.Set(ctx, cacheKey, payload, c.ttl).Err()
	}
	return info, nil
}
