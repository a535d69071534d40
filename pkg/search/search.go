package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coolbeans/lexnav/pkg/tfidf"
)

const (
	// MinQueryLength is the shortest query, in characters, that produces results.
	MinQueryLength = 2
	// MinScore is the strict lower bound on the score of a returned result.
	MinScore = 0.5

	exactIDBonus    = 200.0
	citationBonus   = 200.0
	titleMatchBonus = 50.0
	substringScore  = 1.0
	vectorScale     = 100.0
)

// Result is one ranked search hit.
type Result struct {
	Type    UnitType `json:"type"`
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Preview string   `json:"preview"`
	Score   float64  `json:"score"`
	Law     Law      `json:"law"`
}

// Search runs query against idx.
func Search(query string, idx *Index) []Result {
	return idx.Search(query)
}

// Search returns every unit scoring above MinScore, best first.
//
// When the query has no indexable tokens (stop words, punctuation, bare numbers)
// units are matched by case-insensitive substring instead of by vector similarity.
// Either way, an exact id match, a "{type}{id}" citation match and a title match
// add fixed bonuses so citation queries such as "5" or "Article 5" rank the cited
// provision first.
func (idx *Index) Search(query string) []Result {
	return idx.SearchLimit(query, 0)
}

// SearchLimit is Search truncated to at most limit results. A limit of zero or less
// returns all results.
func (idx *Index) SearchLimit(query string, limit int) []Result {
	results := make([]Result, 0)

	query = strings.TrimSpace(query)
	if idx == nil || utf8.RuneCountInString(query) < MinQueryLength {
		return results
	}

	lowered := strings.ToLower(query)
	compact := stripSpace(lowered)

	tokens := tfidf.Tokenize(query)
	var queryVector tfidf.Vector
	if len(tokens) > 0 {
		queryVector = tfidf.ComputeVector(tokens, idx.idf)
	}

	for _, e := range idx.entries {
		score := 0.0
		if len(tokens) > 0 {
			score = tfidf.CosineSimilarity(queryVector, e.vector) * vectorScale
		} else if strings.Contains(strings.ToLower(e.plainText), lowered) || strings.Contains(strings.ToLower(e.unit.Title), lowered) {
			score = substringScore
		}

		if strings.EqualFold(query, e.unit.ID) {
			score += exactIDBonus
		}
		if compact == string(e.unit.Type)+strings.ToLower(e.unit.ID) {
			score += citationBonus
		}
		if strings.Contains(strings.ToLower(e.unit.Title), lowered) {
			score += titleMatchBonus
		}

		if score > MinScore {
			results = append(results, Result{
				Type:    e.unit.Type,
				ID:      e.unit.ID,
				Title:   e.unit.Title,
				Preview: e.preview,
				Score:   score,
				Law:     e.unit.Law,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func stripSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
