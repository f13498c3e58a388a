// Package cache holds parsed datasets for the lifetime of a session.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores parsed values by key
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Clear()
}

// CacheKey generates a cache key for one kind of value read from path
func CacheKey(kind, path string) string {
	hash := sha256.Sum256([]byte(path))
	return "fiforecast:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}

// Load returns the value cached under key, calling fill and caching its
// result on a miss. Errors are not cached.
func Load[T any](c Cache, key string, fill func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := fill()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
