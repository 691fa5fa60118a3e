package db

import (
	"inkwell/cms/db/cache"
)

// Cache bundles the volatile stores. Redis is the only one today.
type Cache struct {
	Redis *cache.RedisCache
}

// NewCache creates the cache bundle.
func NewCache(redisCache *cache.RedisCache) *Cache {
	return &Cache{Redis: redisCache}
}

// Close closes the cache connections.
func (c *Cache) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
