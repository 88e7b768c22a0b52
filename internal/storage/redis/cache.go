package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) *Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	return &Client{client}
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, data, expiration).Err()
}

func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// AlertListKey builds a cache key for an alert listing from the tenant and
// the normalized query string, hashed to keep key size bounded.
func AlertListKey(tenantID, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("alerts:list:%s:%s", tenantID, hex.EncodeToString(sum[:8]))
}

func (c *Client) CacheAlertList(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	return c.SetJSON(ctx, key, payload, ttl)
}

func (c *Client) GetCachedAlertList(ctx context.Context, key string, dest interface{}) error {
	return c.GetJSON(ctx, key, dest)
}

// InvalidateAlertLists drops all cached listings for a tenant, called after
// a state-changing operation such as a dismissal.
func (c *Client) InvalidateAlertLists(ctx context.Context, tenantID string) error {
	pattern := fmt.Sprintf("alerts:list:%s:*", tenantID)
	iter := c.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
