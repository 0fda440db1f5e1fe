package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "stockroom:listing"

// LoadTimeout bounds one shared page load.
const LoadTimeout = 30 * time.Second

// Cache stores list pages in Redis under a per-list version. Bumping the
// version invalidates every cached page of that list at once.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *Metrics
}

// NewCache instantiates the cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, metrics *Metrics) *Cache {
	return &Cache{client: client, ttl: ttl, metrics: metrics}
}

// Version returns the current version of list, initialising it when missing.
func (c *Cache) Version(ctx context.Context, list string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(list)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	return ver, err
}

// Fetch loads the page stored under key for list into dest, running loader
// on a miss. Concurrent misses for the same key share one loader call.
func (c *Cache) Fetch(ctx context.Context, list, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("listing: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}

	ver, err := c.Version(ctx, list)
	if err != nil {
		return err
	}
	redisKey := fmt.Sprintf("%s:%s:%d:%s", keyPrefix, list, ver, key)

	payload, err := c.client.Get(ctx, redisKey).Bytes()
	if err == nil {
		c.metrics.hit(list)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.metrics.miss(list)

	ch := c.group.DoChan(redisKey, func() (any, error) {
		// Detached from the first caller: every waiter on this key shares it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		started := time.Now()
		value, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		c.metrics.observeLoad(list, time.Since(started))
		if err := c.client.Set(loadCtx, redisKey, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached page of the given lists.
func (c *Cache) Bump(ctx context.Context, lists ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, list := range lists {
		pipe.Incr(ctx, versionKey(list))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func versionKey(list string) string {
	return strings.Join([]string{keyPrefix, list, "version"}, ":")
}

func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
