package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
)

const catalogKeyPrefix = "catalog:"

// CatalogCache keeps serialized catalog reads under a shared key prefix so a
// single Invalidate drops all of them.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func catalogKey(key string) string {
	return catalogKeyPrefix + key
}

// GetJSON decodes a cached value into dest. A miss returns (false, nil).
func (c *CatalogCache) GetJSON(key string, dest interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, catalogKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read catalog cache %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode catalog cache %s: %w", key, err)
	}
	return true, nil
}

func (c *CatalogCache) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.client.Set(ctx, catalogKey(key), data, c.ttl).Err()
}

// Invalidate deletes every catalog key.
func (c *CatalogCache) Invalidate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var keys []string
	iter := c.client.Scan(ctx, 0, catalogKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	logger.Debug("Invalidating catalog cache", map[string]interface{}{
		"keys": len(keys),
	})
	return c.client.Del(ctx, keys...).Err()
}
