package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps values in memory until deleted or cleared
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache whose entries never expire
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

// Set stores a value in the cache
func (c *MemoryCache) Set(key string, value any) {
	c.cache.Set(key, value, gocache.NoExpiration)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of cached values
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
