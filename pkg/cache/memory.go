package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store with per-entry expiry. Expired entries are
// removed lazily on access.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryStore creates a store. defaultTTL applies when Set is called with ttl <= 0;
// a non-positive defaultTTL keeps such entries until deleted.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (memoryStore *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	memoryStore.mu.RLock()
	entry, found := memoryStore.entries[key]
	memoryStore.mu.RUnlock()

	if !found {
		return nil, false, nil
	}

	if !entry.expiresAt.IsZero() && memoryStore.now().After(entry.expiresAt) {
		memoryStore.mu.Lock()
		if current, stillThere := memoryStore.entries[key]; stillThere && current == entry {
			delete(memoryStore.entries, key)
		}
		memoryStore.mu.Unlock()
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

func (memoryStore *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = memoryStore.defaultTTL
	}

	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = memoryStore.now().Add(ttl)
	}

	memoryStore.mu.Lock()
	memoryStore.entries[key] = entry
	memoryStore.mu.Unlock()
	return nil
}

func (memoryStore *MemoryStore) Delete(ctx context.Context, key string) error {
	memoryStore.mu.Lock()
	delete(memoryStore.entries, key)
	memoryStore.mu.Unlock()
	return nil
}

func (memoryStore *MemoryStore) Close() error { return nil }

// Len returns the number of entries, including any not yet lazily expired.
func (memoryStore *MemoryStore) Len() int {
	memoryStore.mu.RLock()
	defer memoryStore.mu.RUnlock()
	return len(memoryStore.entries)
}
