// Package reader ties the law registry, the relevance engine, the search index and
// the summarizers together for callers such as the CLI. It owns caching, logging
// and metrics; the packages it composes stay pure.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coolbeans/lexnav/pkg/cache"
	"github.com/coolbeans/lexnav/pkg/extract"
	"github.com/coolbeans/lexnav/pkg/library"
	"github.com/coolbeans/lexnav/pkg/metrics"
	"github.com/coolbeans/lexnav/pkg/relevance"
	"github.com/coolbeans/lexnav/pkg/search"
	"github.com/coolbeans/lexnav/pkg/summarize"
)

// ErrArticleNotFound is returned when a document has no article with the requested number.
var ErrArticleNotFound = errors.New("reader: article not found")

// Options configures a Reader. Every field is optional.
type Options struct {
	Loader     *library.Loader
	Cache      cache.Store
	CacheTTL   time.Duration
	Relevance  relevance.Options
	Summarizer summarize.Summarizer
	// MaxSentences bounds summaries produced by SummarizeArticle. Default: 3.
	MaxSentences int
	Metrics      *metrics.Metrics
	Logger       *zerolog.Logger
}

// Reader is safe for concurrent use.
type Reader struct {
	loader       *library.Loader
	store        cache.Store
	cacheTTL     time.Duration
	options      relevance.Options
	summarizer   summarize.Summarizer
	maxSentences int
	metrics      *metrics.Metrics
	logger       zerolog.Logger

	mu   sync.Mutex
	laws map[string]*library.Law
}

// New creates a Reader. Without a loader only document-level operations work;
// without a cache relevance maps are recomputed each time.
func New(opts Options) *Reader {
	reader := &Reader{
		loader:       opts.Loader,
		store:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		options:      opts.Relevance,
		summarizer:   opts.Summarizer,
		maxSentences: opts.MaxSentences,
		metrics:      opts.Metrics,
		logger:       zerolog.Nop(),
		laws:         make(map[string]*library.Law),
	}
	if reader.store == nil {
		reader.store = cache.NopStore{}
	}
	if reader.options == (relevance.Options{}) {
		reader.options = relevance.DefaultOptions()
	}
	if reader.summarizer == nil {
		reader.summarizer = summarize.NewFrequencySummarizer()
	}
	if opts.Logger != nil {
		reader.logger = opts.Logger.With().Str("component", "reader").Logger()
	}
	return reader
}

// Open loads the law registered under key, memoizing it for the reader's lifetime.
func (reader *Reader) Open(ctx context.Context, key string) (*library.Law, error) {
	if reader.loader == nil {
		return nil, fmt.Errorf("reader has no law loader")
	}

	normalized := strings.ToLower(strings.TrimSpace(key))
	reader.mu.Lock()
	law, found := reader.laws[normalized]
	reader.mu.Unlock()
	if found {
		return law, nil
	}

	start := time.Now()
	law, err := reader.loader.Load(ctx, key)
	if reader.metrics != nil {
		source := "none"
		if law != nil {
			source = law.Source
		}
		reader.metrics.RecordLoad(normalized, source, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	if reader.metrics != nil {
		reader.metrics.RecordDocument(law.Entry.Key, law.Stats.Articles, law.Stats.Recitals, law.Stats.Annexes)
		for _, mismatch := range law.Mismatches {
			reader.metrics.RecordMismatch(law.Entry.Key, mismatch.Field)
		}
	}

	reader.mu.Lock()
	reader.laws[normalized] = law
	reader.mu.Unlock()
	return law, nil
}

// Relevance returns the article-to-recital map for document, consulting the cache
// first. Cache failures are logged and never fail the call.
func (reader *Reader) Relevance(ctx context.Context, document *extract.Document) (relevance.Map, error) {
	return reader.RelevanceWithOptions(ctx, document, reader.options)
}

// RelevanceWithOptions is Relevance with options overriding the reader's own.
func (reader *Reader) RelevanceWithOptions(ctx context.Context, document *extract.Document, options relevance.Options) (relevance.Map, error) {
	if document == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}

	key := relevanceKey(document, options)
	var cached relevance.Map
	found, err := cache.GetJSON(ctx, reader.store, key, &cached)
	if err != nil {
		reader.logger.Warn().Err(err).Str("key", key).Msg("relevance cache read failed")
	}
	if found {
		reader.recordRelevance(true, 0)
		return cached, nil
	}

	start := time.Now()
	relevanceMap := relevance.Build(document.Articles, document.Recitals, options)
	duration := time.Since(start)
	reader.recordRelevance(false, duration)

	reader.logger.Debug().
		Int("articles", len(document.Articles)).
		Int("recitals", len(document.Recitals)).
		Int("assignments", relevanceMap.Assignments()).
		Dur("duration", duration).
		Msg("relevance map built")

	if err := cache.SetJSON(ctx, reader.store, key, relevanceMap, reader.cacheTTL); err != nil {
		reader.logger.Warn().Err(err).Str("key", key).Msg("relevance cache write failed")
	}
	return relevanceMap, nil
}

// LawRelevance opens key and returns its relevance map.
func (reader *Reader) LawRelevance(ctx context.Context, key string) (relevance.Map, error) {
	law, err := reader.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	return reader.Relevance(ctx, law.Document)
}

// Index opens every key and builds one search index over all of them. With no keys
// it indexes every registered law.
func (reader *Reader) Index(ctx context.Context, keys ...string) (*search.Index, error) {
	if len(keys) == 0 && reader.loader != nil {
		for _, entry := range reader.loader.Registry().List() {
			keys = append(keys, entry.Key)
		}
	}

	laws := make([]*library.Law, 0, len(keys))
	for _, key := range keys {
		law, err := reader.Open(ctx, key)
		if err != nil {
			return nil, err
		}
		laws = append(laws, law)
	}
	return reader.IndexLaws(laws...), nil
}

// IndexLaws builds a search index over already loaded laws.
func (reader *Reader) IndexLaws(laws ...*library.Law) *search.Index {
	var units []search.Unit
	for _, law := range laws {
		tag := search.Law{Key: law.Entry.Key, Label: law.Entry.Label()}
		units = append(units, search.UnitsFromDocument(tag, law.Document)...)
	}
	return reader.buildIndex(units)
}

// IndexDocument builds a search index over a single parsed document.
func (reader *Reader) IndexDocument(law search.Law, document *extract.Document) *search.Index {
	return reader.buildIndex(search.UnitsFromDocument(law, document))
}

func (reader *Reader) buildIndex(units []search.Unit) *search.Index {
	start := time.Now()
	index := search.BuildIndex(units)
	if reader.metrics != nil {
		reader.metrics.IndexUnits.Set(float64(index.Len()))
	}
	reader.logger.Debug().Int("units", index.Len()).Dur("duration", time.Since(start)).Msg("search index built")
	return index
}

// Search runs query against index. A positive limit truncates the ranked results.
func (reader *Reader) Search(index *search.Index, query string, limit int) []search.Result {
	start := time.Now()
	results := index.SearchLimit(query, limit)
	if reader.metrics != nil {
		reader.metrics.RecordSearch(time.Since(start), len(results))
	}
	return results
}

// SummarizeArticle summarizes one article, passing its mapped recitals as context.
func (reader *Reader) SummarizeArticle(ctx context.Context, document *extract.Document, articleNumber string) (*summarize.Result, error) {
	if document == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	article := document.Article(articleNumber)
	if article == nil {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, articleNumber)
	}

	relevanceMap, err := reader.Relevance(ctx, document)
	if err != nil {
		return nil, err
	}

	var passages []string
	for _, related := range relevanceMap.RecitalsFor(article.Number) {
		if related.Recital != nil {
			passages = append(passages, related.Recital.Text)
		}
	}

	title := "Article " + article.Number
	if article.Title != "" {
		title += " - " + article.Title
	}

	result, err := reader.summarizer.Summarize(ctx, summarize.Request{
		Title:        title,
		Text:         article.PlainText(),
		Context:      passages,
		MaxSentences: reader.maxSentences,
	})
	if reader.metrics != nil {
		var input, output int
		if result != nil {
			input, output = result.Usage.InputTokens, result.Usage.OutputTokens
		}
		reader.metrics.RecordSummary(reader.summarizer.Name(), input, output, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to summarize article %s: %w", article.Number, err)
	}

	reader.logger.Info().
		Str("article", article.Number).
		Str("provider", result.Provider).
		Int("context", len(passages)).
		Msg("article summarized")
	return result, nil
}

func relevanceKey(document *extract.Document, options relevance.Options) string {
	return fmt.Sprintf("relevance:%s:%g:%t:%d:%d",
		cache.DocumentKey(document),
		options.Threshold,
		options.Exclusive,
		options.TitleWeight,
		options.KeywordCount)
}

// RelevanceOptions returns the options Relevance uses.
func (reader *Reader) RelevanceOptions() relevance.Options {
	return reader.options
}

func (reader *Reader) recordRelevance(cached bool, duration time.Duration) {
	if reader.metrics != nil {
		reader.metrics.RecordRelevance(cached, duration)
	}
}
