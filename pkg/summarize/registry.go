package summarize

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages summarizers by name.
type Registry struct {
	mu          sync.RWMutex
	summarizers map[string]Summarizer
}

// NewRegistry creates a registry holding the extractive summarizer.
func NewRegistry() *Registry {
	registry := &Registry{summarizers: make(map[string]Summarizer)}
	registry.summarizers[ProviderExtractive] = NewFrequencySummarizer()
	return registry
}

// Register adds a summarizer. Names must be unique, except that the built-in
// extractive summarizer may be replaced.
func (r *Registry) Register(summarizer Summarizer) error {
	if summarizer == nil {
		return fmt.Errorf("cannot register nil summarizer")
	}
	name := summarizer.Name()
	if name == "" {
		return fmt.Errorf("summarizer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.summarizers[name]; exists {
		if _, builtin := existing.(*FrequencySummarizer); !builtin {
			return fmt.Errorf("summarizer already registered: %s", name)
		}
	}
	r.summarizers[name] = summarizer
	return nil
}

// Get returns a summarizer by name.
func (r *Registry) Get(name string) (Summarizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summarizer, ok := r.summarizers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return summarizer, nil
}

// List returns all registered names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.summarizers))
	for name := range r.summarizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a summarizer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.summarizers[name]
	return ok
}
