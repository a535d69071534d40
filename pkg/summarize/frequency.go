package summarize

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/lexnav/pkg/tfidf"
)

// minSentenceTokens merges list markers such as "1." or "(a)" into the following sentence.
const minSentenceTokens = 2

var sentencePattern = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)

// FrequencySummarizer ranks sentences by content-word frequency and returns the
// best ones in their original order. Terms that also occur in the request context
// weigh more.
type FrequencySummarizer struct{}

// NewFrequencySummarizer creates the extractive summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{}
}

func (s *FrequencySummarizer) Name() string { return ProviderExtractive }

func (s *FrequencySummarizer) Validate() error { return nil }

// Summarize never calls out; ctx is only checked for cancellation.
func (s *FrequencySummarizer) Summarize(ctx context.Context, request Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	request = request.withDefaults()

	text := strings.Join(strings.Fields(request.Text), " ")
	if text == "" {
		return nil, ErrEmptyText
	}

	sentences := splitSentences(text)
	result := &Result{Provider: ProviderExtractive}
	if len(sentences) <= request.MaxSentences {
		result.Summary = strings.Join(sentences, " ")
		return result, nil
	}

	freq := map[string]float64{}
	for _, sentence := range sentences {
		for _, token := range tfidf.Tokenize(sentence) {
			freq[token]++
		}
	}
	for _, passage := range request.Context {
		for _, token := range tfidf.Tokenize(passage) {
			if _, ok := freq[token]; ok {
				freq[token]++
			}
		}
	}

	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sentence := range sentences {
		tokens := tfidf.Tokenize(sentence)
		score := 0.0
		for _, token := range tokens {
			score += freq[token]
		}
		if len(tokens) > 0 {
			score /= math.Sqrt(float64(len(tokens)))
		}
		scores[i] = scored{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	selected := make([]int, request.MaxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	result.Summary = strings.Join(out, " ")
	return result, nil
}

func splitSentences(text string) []string {
	var (
		sentences []string
		pending   string
	)
	for _, raw := range sentencePattern.FindAllString(text, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		if pending != "" {
			sentence = pending + " " + sentence
			pending = ""
		}
		if len(strings.Fields(sentence)) < minSentenceTokens {
			pending = sentence
			continue
		}
		sentences = append(sentences, sentence)
	}
	if pending != "" {
		if len(sentences) == 0 {
			return []string{pending}
		}
		sentences[len(sentences)-1] += " " + pending
	}
	return sentences
}
