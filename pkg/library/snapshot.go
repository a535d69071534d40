package library

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/coolbeans/lexnav/pkg/extract"
)

const (
	manifestFileName  = "snapshots.json"
	documentsDir      = "documents"
	documentFileName  = "document.json"
	manifestVersion   = "1.0.0"
	snapshotSourceTag = "snapshot"
)

// SnapshotEntry records one stored document in the manifest.
type SnapshotEntry struct {
	Key         string             `json:"key"`
	StorageHash string             `json:"storage_hash"`
	Stats       extract.Statistics `json:"stats"`
	SavedAt     time.Time          `json:"saved_at"`
}

// SnapshotManifest is the on-disk index of a snapshot store.
type SnapshotManifest struct {
	Version   string           `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
	Snapshots []*SnapshotEntry `json:"snapshots"`
}

// SnapshotStore persists parsed documents as JSON so later loads take the parser's
// structured short-circuit instead of re-reading HTML.
type SnapshotStore struct {
	mu       sync.RWMutex
	path     string
	manifest *SnapshotManifest
}

// OpenSnapshotStore opens the store at snapshotPath, creating it when missing.
func OpenSnapshotStore(snapshotPath string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Join(snapshotPath, documentsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snapshots := &SnapshotStore{path: snapshotPath}

	data, err := os.ReadFile(filepath.Join(snapshotPath, manifestFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		snapshots.manifest = &SnapshotManifest{
			Version:   manifestVersion,
			UpdatedAt: time.Now().UTC(),
			Snapshots: []*SnapshotEntry{},
		}
		if err := snapshots.saveManifest(); err != nil {
			return nil, fmt.Errorf("failed to save manifest: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read snapshot manifest: %w", err)
	default:
		var manifest SnapshotManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot manifest: %w", err)
		}
		snapshots.manifest = &manifest
	}

	return snapshots, nil
}

func (snapshots *SnapshotStore) Name() string { return snapshotSourceTag }

// Fetch returns the stored JSON for the entry, or ErrNoSource when none exists.
func (snapshots *SnapshotStore) Fetch(ctx context.Context, entry *LawEntry) ([]byte, error) {
	snapshots.mu.RLock()
	defer snapshots.mu.RUnlock()

	if snapshots.findUnsafe(entry.Key) == nil {
		return nil, ErrNoSource
	}
	data, err := os.ReadFile(snapshots.documentPath(hashKey(entry.Key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", entry.Key, err)
	}
	return data, nil
}

// Save writes document under key, replacing any earlier snapshot.
func (snapshots *SnapshotStore) Save(key string, document *extract.Document) error {
	if key == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if document == nil {
		return fmt.Errorf("document cannot be nil")
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	snapshots.mu.Lock()
	defer snapshots.mu.Unlock()

	storageHash := hashKey(key)
	documentPath := snapshots.documentPath(storageHash)
	if err := os.MkdirAll(filepath.Dir(documentPath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(documentPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	snapshots.upsertUnsafe(&SnapshotEntry{
		Key:         key,
		StorageHash: storageHash,
		Stats:       document.Statistics(),
		SavedAt:     time.Now().UTC(),
	})
	return snapshots.saveManifest()
}

// Remove deletes the snapshot for key. Removing a missing key is a no-op.
func (snapshots *SnapshotStore) Remove(key string) error {
	snapshots.mu.Lock()
	defer snapshots.mu.Unlock()

	if snapshots.findUnsafe(key) == nil {
		return nil
	}
	if err := os.RemoveAll(filepath.Dir(snapshots.documentPath(hashKey(key)))); err != nil {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}

	remaining := snapshots.manifest.Snapshots[:0]
	for _, entry := range snapshots.manifest.Snapshots {
		if entry.Key != key {
			remaining = append(remaining, entry)
		}
	}
	snapshots.manifest.Snapshots = remaining
	return snapshots.saveManifest()
}

// List returns all snapshot entries sorted by key.
func (snapshots *SnapshotStore) List() []*SnapshotEntry {
	snapshots.mu.RLock()
	result := make([]*SnapshotEntry, len(snapshots.manifest.Snapshots))
	copy(result, snapshots.manifest.Snapshots)
	snapshots.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Path returns the store's root directory.
func (snapshots *SnapshotStore) Path() string {
	return snapshots.path
}

func (snapshots *SnapshotStore) findUnsafe(key string) *SnapshotEntry {
	for _, entry := range snapshots.manifest.Snapshots {
		if entry.Key == key {
			return entry
		}
	}
	return nil
}

func (snapshots *SnapshotStore) upsertUnsafe(entry *SnapshotEntry) {
	for i, existing := range snapshots.manifest.Snapshots {
		if existing.Key == entry.Key {
			snapshots.manifest.Snapshots[i] = entry
			return
		}
	}
	snapshots.manifest.Snapshots = append(snapshots.manifest.Snapshots, entry)
}

func (snapshots *SnapshotStore) saveManifest() error {
	snapshots.manifest.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(snapshots.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(snapshots.path, manifestFileName), data, 0644)
}

func (snapshots *SnapshotStore) documentPath(storageHash string) string {
	return filepath.Join(snapshots.path, documentsDir, storageHash, documentFileName)
}

func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash)
}
