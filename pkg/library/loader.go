package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/coolbeans/lexnav/pkg/eurlex"
	"github.com/coolbeans/lexnav/pkg/extract"
)

var (
	// ErrNoSource is returned by a Source that has no locator for an entry.
	ErrNoSource = errors.New("library: no source for law")

	// ErrUnparseable is returned when a source produced no articles, recitals or annexes.
	ErrUnparseable = errors.New("library: document produced no structure")
)

// Source retrieves the raw text of a law.
type Source interface {
	Name() string
	Fetch(ctx context.Context, entry *LawEntry) ([]byte, error)
}

// FileSource reads laws from SourcePath, relative to BaseDir unless absolute.
type FileSource struct {
	BaseDir string
}

func (fileSource FileSource) Name() string { return "file" }

func (fileSource FileSource) Fetch(ctx context.Context, entry *LawEntry) ([]byte, error) {
	if entry.SourcePath == "" {
		return nil, ErrNoSource
	}

	sourcePath := entry.SourcePath
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(fileSource.BaseDir, sourcePath)
	}

	data, err := os.ReadFile(sourcePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, sourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	return data, nil
}

// EURLexSource downloads laws by CELEX number.
type EURLexSource struct {
	Client *eurlex.EURLexClient
}

func (eurlexSource EURLexSource) Name() string { return "eurlex" }

func (eurlexSource EURLexSource) Fetch(ctx context.Context, entry *LawEntry) ([]byte, error) {
	if entry.CELEX == "" || eurlexSource.Client == nil {
		return nil, ErrNoSource
	}

	document, err := eurlexSource.Client.FetchDocument(ctx, entry.CELEX)
	if err != nil {
		return nil, err
	}
	return document.Body, nil
}

// Loader resolves registry keys to parsed laws by trying each source in order.
type Loader struct {
	registry  *Registry
	sources   []Source
	snapshots *SnapshotStore
	parser    *extract.Parser
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(registry *Registry, logger *zerolog.Logger, sources ...Source) *Loader {
	loader := &Loader{
		registry: registry,
		sources:  sources,
		parser:   extract.NewParser(),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	if logger != nil {
		loader.logger = logger.With().Str("component", "library").Logger()
	}
	return loader
}

// WithSnapshots makes the loader consult the store first and write every law it
// loads from another source back to it.
func (loader *Loader) WithSnapshots(snapshots *SnapshotStore) *Loader {
	loader.snapshots = snapshots
	return loader
}

// Registry returns the registry the loader resolves keys against.
func (loader *Loader) Registry() *Registry {
	return loader.registry
}

// Load fetches and parses the law registered under key.
func (loader *Loader) Load(ctx context.Context, key string) (*Law, error) {
	entry, err := loader.registry.Get(key)
	if err != nil {
		return nil, err
	}

	sources := loader.sources
	if loader.snapshots != nil {
		sources = append([]Source{loader.snapshots}, sources...)
	}

	var lastErr error
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := source.Fetch(ctx, entry)
		if errors.Is(err, ErrNoSource) {
			continue
		}
		if err != nil {
			loader.logger.Warn().Err(err).Str("law", entry.Key).Str("source", source.Name()).Msg("source failed")
			lastErr = fmt.Errorf("%s: %w", source.Name(), err)
			continue
		}

		document := loader.parser.ParseAny(string(data))
		if document.IsEmpty() {
			loader.logger.Warn().Str("law", entry.Key).Str("source", source.Name()).Int("bytes", len(data)).Msg("source produced no structure")
			lastErr = fmt.Errorf("%s: %w", source.Name(), ErrUnparseable)
			continue
		}

		law := NewLaw(entry, document)
		law.Source = source.Name()
		law.SourceBytes = len(data)
		law.LoadedAt = loader.now()

		event := loader.logger.Info()
		if !law.Verified() {
			event = loader.logger.Warn().Interface("mismatches", law.Mismatches)
		}
		event.Str("law", entry.Key).
			Str("source", law.Source).
			Int("articles", law.Stats.Articles).
			Int("recitals", law.Stats.Recitals).
			Int("annexes", law.Stats.Annexes).
			Msg("law loaded")

		fromSnapshot := loader.snapshots != nil && i == 0
		if loader.snapshots != nil && !fromSnapshot {
			if err := loader.snapshots.Save(entry.Key, document); err != nil {
				loader.logger.Warn().Err(err).Str("law", entry.Key).Msg("failed to save snapshot")
			}
		}
		return law, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("failed to load %s: %w", entry.Key, ErrNoSource)
	}
	return nil, fmt.Errorf("failed to load %s: %w", entry.Key, lastErr)
}

// LoadAll loads every registered law, returning the ones that succeeded and a
// joined error for the rest.
func (loader *Loader) LoadAll(ctx context.Context) ([]*Law, error) {
	var (
		laws []*Law
		errs []error
	)
	for _, entry := range loader.registry.List() {
		law, err := loader.Load(ctx, entry.Key)
		if err != nil {
			if ctx.Err() != nil {
				return laws, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		laws = append(laws, law)
	}
	return laws, errors.Join(errs...)
}

// NewLaw wraps a parsed document with its catalogue entry, computing statistics,
// count mismatches and the resolved canonical link.
func NewLaw(entry *LawEntry, document *extract.Document) *Law {
	stats := document.Statistics()
	return &Law{
		Entry:      entry,
		Document:   document,
		Stats:      stats,
		Mismatches: VerifyCounts(entry.Expected, stats),
		SourceURL:  ResolveSourceURL(entry, document),
	}
}

// VerifyCounts compares parsed statistics against the expected counts. Expected
// counts of zero are skipped.
func VerifyCounts(expected ExpectedCounts, stats extract.Statistics) []CountMismatch {
	var mismatches []CountMismatch
	check := func(field string, want, got int) {
		if want > 0 && want != got {
			mismatches = append(mismatches, CountMismatch{Field: field, Expected: want, Actual: got})
		}
	}
	check("articles", expected.Articles, stats.Articles)
	check("recitals", expected.Recitals, stats.Recitals)
	check("annexes", expected.Annexes, stats.Annexes)
	return mismatches
}

// ResolveSourceURL picks the canonical link for a law: the document's own canonical
// link, then the catalogue's, then an ELI derived from the title or name, then the
// EUR-Lex CELEX page.
func ResolveSourceURL(entry *LawEntry, document *extract.Document) string {
	if document != nil && document.SourceURL != "" {
		return document.SourceURL
	}
	if entry.SourceURL != "" {
		return entry.SourceURL
	}

	candidates := []string{entry.Name}
	if document != nil {
		candidates = append([]string{document.Title}, candidates...)
	}
	for _, candidate := range candidates {
		identifier, found := eurlex.ParseIdentifier(candidate)
		if !found {
			continue
		}
		if eliURI, err := eurlex.GenerateELI(identifier); err == nil {
			return eliURI.String()
		}
	}

	if entry.CELEX != "" {
		return eurlex.DocumentURL(entry.CELEX)
	}
	return ""
}
