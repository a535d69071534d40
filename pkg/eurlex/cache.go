package eurlex

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the default time-to-live for cached responses.
const DefaultCacheTTL = 1 * time.Hour

// cacheEntry holds a cached value and its expiration time.
type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ResponseCache is a thread-safe, in-memory TTL cache for EUR-Lex responses.
// Entries are lazily expired on access (checked during Get).
type ResponseCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewResponseCache creates a new cache with the given default TTL.
// A TTL of zero or less disables caching: Set is a no-op.
func NewResponseCache[V any](defaultTTL time.Duration) *ResponseCache[V] {
	return &ResponseCache[V]{
		entries:    make(map[string]cacheEntry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get retrieves a cached value by key.
// Returns the value and true if found and not expired, or a zero value and false otherwise.
// Expired entries are lazily removed on access.
func (responseCache *ResponseCache[V]) Get(key string) (V, bool) {
	var zero V

	responseCache.mu.RLock()
	entry, exists := responseCache.entries[key]
	responseCache.mu.RUnlock()

	if !exists {
		return zero, false
	}

	if responseCache.now().After(entry.expiresAt) {
		responseCache.mu.Lock()
		// Re-check in case another goroutine already removed or replaced it.
		if current, stillExists := responseCache.entries[key]; stillExists && responseCache.now().After(current.expiresAt) {
			delete(responseCache.entries, key)
		}
		responseCache.mu.Unlock()
		return zero, false
	}

	return entry.value, true
}

// Set stores a value in the cache with the default TTL.
func (responseCache *ResponseCache[V]) Set(key string, value V) {
	if responseCache.defaultTTL <= 0 {
		return
	}
	responseCache.mu.Lock()
	responseCache.entries[key] = cacheEntry[V]{
		value:     value,
		expiresAt: responseCache.now().Add(responseCache.defaultTTL),
	}
	responseCache.mu.Unlock()
}

// Invalidate removes a specific entry from the cache.
func (responseCache *ResponseCache[V]) Invalidate(key string) {
	responseCache.mu.Lock()
	delete(responseCache.entries, key)
	responseCache.mu.Unlock()
}

// Len returns the number of entries currently in the cache (including potentially expired ones).
func (responseCache *ResponseCache[V]) Len() int {
	responseCache.mu.RLock()
	count := len(responseCache.entries)
	responseCache.mu.RUnlock()
	return count
}
