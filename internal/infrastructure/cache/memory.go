package cache

import (
	"sync"
	"time"

	"rokomferi-storefront/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCache backs the sandbox's per-shopper carts, wishlists, revoked
// tokens and catalog reads. Writes are serialized so Update can read and
// replace a value without another writer slipping in between.
type memoryCache struct {
	mu    sync.Mutex
	store *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache service
// defaultExpiration: default TTL for items, negative for none
// cleanupInterval: how often to scan for expired items, 0 disables the janitor
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func expiration(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return gocache.DefaultExpiration
	case d < 0:
		return gocache.NoExpiration
	}
	return d
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(key, value, expiration(duration))
}

func (c *memoryCache) Update(key string, duration time.Duration, fn func(current interface{}, found bool) (interface{}, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, found := c.store.Get(key)
	next, keep := fn(current, found)
	if !keep {
		c.store.Delete(key)
		return
	}
	c.store.Set(key, next, expiration(duration))
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(key)
}

func (c *memoryCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
}
