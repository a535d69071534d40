package library

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLaw is returned when a key is not in the registry.
var ErrUnknownLaw = errors.New("library: unknown law")

const catalogueVersion = "1"

// DefaultCatalogue returns the built-in list of EU digital-regulation acts.
func DefaultCatalogue() []*LawEntry {
	return []*LawEntry{
		{Key: "ai-act", ShortName: "AI Act", Name: "Regulation (EU) 2024/1689 (Artificial Intelligence Act)", CELEX: "32024R1689", SourcePath: "ai-act.html", SourceURL: "https://eur-lex.europa.eu/eli/reg/2024/1689/oj", Expected: ExpectedCounts{Articles: 113, Recitals: 180, Annexes: 13}, Tags: []string{"ai"}},
		{Key: "gdpr", ShortName: "GDPR", Name: "Regulation (EU) 2016/679 (General Data Protection Regulation)", CELEX: "32016R0679", SourcePath: "gdpr.html", SourceURL: "https://eur-lex.europa.eu/eli/reg/2016/679/oj", Expected: ExpectedCounts{Articles: 99, Recitals: 173}, Tags: []string{"privacy"}},
		{Key: "dsa", ShortName: "DSA", Name: "Regulation (EU) 2022/2065 (Digital Services Act)", CELEX: "32022R2065", SourcePath: "dsa.html", SourceURL: "https://eur-lex.europa.eu/eli/reg/2022/2065/oj", Expected: ExpectedCounts{Articles: 93, Recitals: 156}, Tags: []string{"platforms"}},
		{Key: "dma", ShortName: "DMA", Name: "Regulation (EU) 2022/1925 (Digital Markets Act)", CELEX: "32022R1925", SourcePath: "dma.html", SourceURL: "https://eur-lex.europa.eu/eli/reg/2022/1925/oj", Expected: ExpectedCounts{Articles: 54, Recitals: 109, Annexes: 1}, Tags: []string{"platforms", "competition"}},
		{Key: "data-act", ShortName: "Data Act", Name: "Regulation (EU) 2023/2854 (Data Act)", CELEX: "32023R2854", SourcePath: "data-act.html", SourceURL: "https://eur-lex.europa.eu/eli/reg/2023/2854/oj", Expected: ExpectedCounts{Articles: 50, Recitals: 119}, Tags: []string{"data"}},
		{Key: "nis2", ShortName: "NIS2", Name: "Directive (EU) 2022/2555 (NIS 2 Directive)", CELEX: "32022L2555", SourcePath: "nis2.html", SourceURL: "https://eur-lex.europa.eu/eli/dir/2022/2555/oj", Expected: ExpectedCounts{Articles: 46, Recitals: 144, Annexes: 3}, Tags: []string{"cybersecurity"}},
		{Key: "eprivacy", ShortName: "ePrivacy", Name: "Directive 2002/58/EC (Directive on privacy and electronic communications)", CELEX: "32002L0058", SourcePath: "eprivacy.html", SourceURL: "https://eur-lex.europa.eu/eli/dir/2002/58/oj", Expected: ExpectedCounts{Articles: 21, Recitals: 49}, Tags: []string{"privacy"}},
	}
}

// LoadCatalogue reads a YAML (or JSON) catalogue file.
func LoadCatalogue(cataloguePath string) ([]*LawEntry, error) {
	data, err := os.ReadFile(cataloguePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}

	var catalogue Catalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue %s: %w", cataloguePath, err)
	}

	entries := make([]*LawEntry, 0, len(catalogue.Laws))
	for i, entry := range catalogue.Laws {
		if entry == nil {
			continue
		}
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("catalogue entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveCatalogue writes entries as a YAML catalogue file.
func SaveCatalogue(cataloguePath string, entries []*LawEntry) error {
	data, err := yaml.Marshal(Catalogue{Version: catalogueVersion, Laws: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}
	return os.WriteFile(cataloguePath, data, 0644)
}

func validateEntry(entry *LawEntry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("law key is required")
	}
	if entry.SourcePath == "" && entry.CELEX == "" {
		return fmt.Errorf("law %s needs a source_path or a celex number", entry.Key)
	}
	return nil
}

// Registry is a thread-safe catalogue of known laws keyed by Key.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*LawEntry
}

// NewRegistry creates a registry holding the given entries. Later entries replace
// earlier ones with the same key.
func NewRegistry(entries ...*LawEntry) *Registry {
	registry := &Registry{entries: make(map[string]*LawEntry, len(entries))}
	for _, entry := range entries {
		if entry != nil {
			registry.entries[normalizeKey(entry.Key)] = entry
		}
	}
	return registry
}

// Register adds or replaces an entry.
func (registry *Registry) Register(entry *LawEntry) error {
	if entry == nil {
		return fmt.Errorf("law entry cannot be nil")
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	registry.mu.Lock()
	registry.entries[normalizeKey(entry.Key)] = entry
	registry.mu.Unlock()
	return nil
}

// Get returns the entry for key. Keys are case-insensitive.
func (registry *Registry) Get(key string) (*LawEntry, error) {
	registry.mu.RLock()
	entry, found := registry.entries[normalizeKey(key)]
	registry.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLaw, key)
	}
	return entry, nil
}

// List returns all entries, sorted by key.
func (registry *Registry) List() []*LawEntry {
	registry.mu.RLock()
	result := make([]*LawEntry, 0, len(registry.entries))
	for _, entry := range registry.entries {
		result = append(result, entry)
	}
	registry.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Len returns the number of registered laws.
func (registry *Registry) Len() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.entries)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
