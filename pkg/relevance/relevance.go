// Package relevance maps each article of a document to the recitals that explain it,
// using TF-IDF cosine similarity over the article vocabulary.
package relevance

import (
	"sort"
	"strings"

	"github.com/coolbeans/lexnav/pkg/extract"
	"github.com/coolbeans/lexnav/pkg/tfidf"
)

const (
	// DefaultThreshold is the similarity a recital must exceed to be assigned.
	DefaultThreshold = 0.1
	// DefaultTitleWeight is how many times article title tokens are repeated.
	DefaultTitleWeight = 3
	// DefaultKeywordCount is the number of matched terms reported per recital.
	DefaultKeywordCount = 3
)

// Options tune relevance mapping.
type Options struct {
	// Threshold is the strict lower bound on the similarity of an assignment.
	Threshold float64
	// Exclusive assigns each recital to its single best article. When false each
	// recital is assigned to every article clearing the threshold.
	Exclusive bool
	// TitleWeight repeats article title tokens to over-weight title vocabulary.
	TitleWeight int
	// KeywordCount caps the matched terms reported with each assignment.
	KeywordCount int
}

// DefaultOptions returns exclusive assignment with the standard threshold and weights.
func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		Exclusive:    true,
		TitleWeight:  DefaultTitleWeight,
		KeywordCount: DefaultKeywordCount,
	}
}

// RelevantRecital is one recital assigned to an article.
type RelevantRecital struct {
	Recital        *extract.Recital `json:"recital"`
	RelevanceScore float64          `json:"relevanceScore"`
	Keywords       []string         `json:"keywords"`
}

// Map holds the recitals assigned to each article number. Articles without
// assignments have no entry.
type Map map[string][]RelevantRecital

// RecitalsFor returns the recitals assigned to an article, best first.
func (m Map) RecitalsFor(articleNumber string) []RelevantRecital {
	return m[articleNumber]
}

// ArticlesFor returns the numbers of the articles a recital is assigned to, sorted.
func (m Map) ArticlesFor(recitalNumber string) []string {
	articles := make([]string, 0)
	for article, recitals := range m {
		for _, relevant := range recitals {
			if relevant.Recital.Number == recitalNumber {
				articles = append(articles, article)
				break
			}
		}
	}
	sort.Strings(articles)
	return articles
}

// Assignments returns the total number of recital assignments in the map.
func (m Map) Assignments() int {
	total := 0
	for _, recitals := range m {
		total += len(recitals)
	}
	return total
}

// BuildRelevanceMap maps articles to recitals with DefaultOptions.
func BuildRelevanceMap(articles []*extract.Article, recitals []*extract.Recital) Map {
	return Build(articles, recitals, DefaultOptions())
}

// Build maps articles to recitals. The result is a new map on every call and depends
// only on its inputs.
func Build(articles []*extract.Article, recitals []*extract.Recital, opts Options) Map {
	result := make(Map)
	if len(articles) == 0 || len(recitals) == 0 {
		return result
	}

	corpus := make([][]string, len(articles))
	for i, article := range articles {
		corpus[i] = articleTokens(article, opts.TitleWeight)
	}

	// Recitals are scored against the article vocabulary only.
	idf := tfidf.ComputeIDF(corpus)

	vectors := make([]tfidf.Vector, len(articles))
	for i, tokens := range corpus {
		vectors[i] = tfidf.ComputeVector(tokens, idf)
	}

	for _, recital := range recitals {
		recitalVector := tfidf.Vectorize(recital.Text, idf)
		if recitalVector.Magnitude == 0 {
			continue
		}

		if opts.Exclusive {
			best, bestScore := -1, 0.0
			for i, articleVector := range vectors {
				// Strict comparison keeps the first article among equal scores.
				if score := tfidf.CosineSimilarity(recitalVector, articleVector); best == -1 || score > bestScore {
					best, bestScore = i, score
				}
			}
			if bestScore > opts.Threshold {
				assign(result, articles[best], recital, bestScore, keywords(recitalVector, vectors[best], idf, opts.KeywordCount))
			}
			continue
		}

		for i, articleVector := range vectors {
			if score := tfidf.CosineSimilarity(recitalVector, articleVector); score > opts.Threshold {
				assign(result, articles[i], recital, score, keywords(recitalVector, articleVector, idf, opts.KeywordCount))
			}
		}
	}

	for _, bucket := range result {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].RelevanceScore > bucket[j].RelevanceScore
		})
	}

	return result
}

func assign(result Map, article *extract.Article, recital *extract.Recital, score float64, terms []string) {
	result[article.Number] = append(result[article.Number], RelevantRecital{
		Recital:        recital,
		RelevanceScore: score,
		Keywords:       terms,
	})
}

// articleTokens builds the article's corpus entry: title tokens repeated weight times,
// followed by the body tokens.
func articleTokens(article *extract.Article, weight int) []string {
	titleTokens := tfidf.Tokenize(article.Title)
	bodyTokens := tfidf.Tokenize(article.PlainText())

	tokens := make([]string, 0, len(titleTokens)*weight+len(bodyTokens))
	for i := 0; i < weight; i++ {
		tokens = append(tokens, titleTokens...)
	}
	return append(tokens, bodyTokens...)
}

// keywords returns the highest-IDF terms shared by the recital and the article.
// Ties are broken alphabetically so the output is deterministic.
func keywords(recital, article tfidf.Vector, idf tfidf.IDF, limit int) []string {
	shared := tfidf.SharedTerms(recital, article)
	sort.Slice(shared, func(i, j int) bool {
		if idf[shared[i]] != idf[shared[j]] {
			return idf[shared[i]] > idf[shared[j]]
		}
		return strings.Compare(shared[i], shared[j]) < 0
	})
	if limit >= 0 && len(shared) > limit {
		shared = shared[:limit]
	}
	return shared
}
