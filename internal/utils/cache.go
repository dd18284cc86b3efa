package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a size-bounded LRU whose entries also expire after a TTL.
type Cache struct {
	lruCache *lru.Cache[string, cacheItem]
	ttl      time.Duration
}

// NewCache creates a cache holding at most size entries, each living ttl.
func NewCache(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lruCache: l, ttl: ttl}, nil
}

// Set stores data under key with the cache's TTL.
func (c *Cache) Set(key string, data interface{}) {
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Get returns the value for key, or nil when absent or expired.
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.data
}

func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

// DeletePrefix drops every key starting with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for _, key := range c.lruCache.Keys() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.lruCache.Remove(key)
		}
	}
}
