// server/internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a redis connection. A nil inner client means the cache is
// disabled and every helper becomes a no-op, so the API works without redis.
type Client struct {
	rdb *redis.Client
}

// New connects to redis. A failed ping logs a warning and returns a disabled
// client instead of an error; the server keeps working without the cache.
func New(addr string) *Client {
	if addr == "" {
		return &Client{}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		return &Client{}
	}

	log.Println("Redis connected successfully")
	return &Client{rdb: rdb}
}

func (c *Client) Close() {
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
}

// GetJSON gets key and unmarshals into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}
	s, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with a TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys, best effort.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache delete failed for %v: %v", keys, err)
	}
}

// CacheAside tries redis first; on miss it calls fetch (which must write into
// dest) and stores the result with the given TTL, best effort.
func (c *Client) CacheAside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		log.Printf("Cache read failed for %s: %v", key, err)
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = c.SetJSON(ctx, key, dest, ttl)
	return nil
}
