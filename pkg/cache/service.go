package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found or expired
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration.
	// A zero duration uses the cache default, a negative one never expires.
	Set(key string, value interface{}, duration time.Duration)

	// Update replaces the value at key with what fn returns, atomically with
	// respect to other writers. fn returning false deletes the key.
	Update(key string, duration time.Duration, fn func(current interface{}, found bool) (interface{}, bool))

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()
}
