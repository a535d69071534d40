// Package cache stores derived results, such as relevance maps, keyed by
// content-derived document keys. Backends are an in-process TTL map and Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coolbeans/lexnav/pkg/extract"
)

// Store is a byte-oriented key/value cache. A miss is reported as found=false, not
// as an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DocumentKey derives a stable key from a document's title and structural counts.
// Two parses of the same act produce the same key.
func DocumentKey(document *extract.Document) string {
	if document == nil {
		return ""
	}
	fingerprint := fmt.Sprintf("%s|%d|%d|%d",
		document.Title, len(document.Articles), len(document.Recitals), len(document.Annexes))
	hash := sha256.Sum256([]byte(fingerprint))
	return fmt.Sprintf("%x", hash)
}

// GetJSON reads key and decodes it into target.
func GetJSON(ctx context.Context, store Store, key string, target any) (bool, error) {
	data, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, data, ttl)
}

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, string) error { return nil }
func (NopStore) Close() error { return nil }
