// Package metrics provides Prometheus instrumentation for law loading, relevance
// mapping, search and summarization. Metrics live on a private registry so several
// readers (and tests) never collide on the default one.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "lexnav"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// Law loading
	LawsLoadedTotal *prometheus.CounterVec
	LawLoadDuration *prometheus.HistogramVec
	CountMismatches *prometheus.CounterVec
	DocumentUnits   *prometheus.GaugeVec

	// Relevance
	RelevanceBuildsTotal   prometheus.Counter
	RelevanceBuildDuration prometheus.Histogram
	RelevanceCacheTotal    *prometheus.CounterVec

	// Search
	IndexUnits          prometheus.Gauge
	SearchQueriesTotal  prometheus.Counter
	SearchResultsTotal  prometheus.Counter
	SearchQueryDuration prometheus.Histogram

	// Summarization
	SummariesTotal *prometheus.CounterVec
	SummaryTokens  *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{Registry: registry}

	m.LawsLoadedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "laws_loaded_total",
			Help:      "Total number of law load attempts",
		},
		[]string{"law", "source", "status"},
	)

	m.LawLoadDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "law_load_duration_seconds",
			Help:      "Duration of fetching and parsing a law",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	m.CountMismatches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "count_mismatches_total",
			Help:      "Structural counts that differed from the catalogue",
		},
		[]string{"law", "field"},
	)

	m.DocumentUnits = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_units",
			Help:      "Articles, recitals and annexes in the last loaded version of each law",
		},
		[]string{"law", "type"},
	)

	m.RelevanceBuildsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relevance_builds_total",
			Help:      "Total number of relevance maps computed",
		},
	)

	m.RelevanceBuildDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relevance_build_duration_seconds",
			Help:      "Duration of relevance map computation",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.RelevanceCacheTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relevance_cache_total",
			Help:      "Relevance cache lookups by result",
		},
		[]string{"result"},
	)

	m.IndexUnits = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_units",
			Help:      "Units in the most recently built search index",
		},
	)

	m.SearchQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Total number of search queries",
		},
	)

	m.SearchResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Total number of search results returned",
		},
	)

	m.SearchQueryDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Duration of search queries",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	m.SummariesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of summarization requests",
		},
		[]string{"provider", "status"},
	)

	m.SummaryTokens = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_tokens_total",
			Help:      "Tokens consumed by generative summarizers",
		},
		[]string{"provider", "direction"},
	)

	return m
}

// RecordLoad records one law load attempt.
func (m *Metrics) RecordLoad(law, source string, duration time.Duration, err error) {
	m.LawsLoadedTotal.WithLabelValues(law, source, status(err)).Inc()
	if err == nil {
		m.LawLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// RecordDocument updates the per-law unit gauges.
func (m *Metrics) RecordDocument(law string, articles, recitals, annexes int) {
	m.DocumentUnits.WithLabelValues(law, "article").Set(float64(articles))
	m.DocumentUnits.WithLabelValues(law, "recital").Set(float64(recitals))
	m.DocumentUnits.WithLabelValues(law, "annex").Set(float64(annexes))
}

// RecordMismatch counts a structural count that differed from the catalogue.
func (m *Metrics) RecordMismatch(law, field string) {
	m.CountMismatches.WithLabelValues(law, field).Inc()
}

// RecordRelevance records a relevance lookup; duration is only observed on a miss.
func (m *Metrics) RecordRelevance(cached bool, duration time.Duration) {
	if cached {
		m.RelevanceCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	m.RelevanceCacheTotal.WithLabelValues("miss").Inc()
	m.RelevanceBuildsTotal.Inc()
	m.RelevanceBuildDuration.Observe(duration.Seconds())
}

// RecordSearch records one query.
func (m *Metrics) RecordSearch(duration time.Duration, results int) {
	m.SearchQueriesTotal.Inc()
	m.SearchResultsTotal.Add(float64(results))
	m.SearchQueryDuration.Observe(duration.Seconds())
}

// RecordSummary records one summarization call and its token usage.
func (m *Metrics) RecordSummary(provider string, inputTokens, outputTokens int, err error) {
	m.SummariesTotal.WithLabelValues(provider, status(err)).Inc()
	if inputTokens > 0 {
		m.SummaryTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.SummaryTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// WriteText writes all gathered metrics in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
