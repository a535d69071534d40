// Package tfidf provides tokenization, TF-IDF vectorization and cosine similarity
// over legislative text.
//
// All functions are pure. A vector space is defined by the IDF mapping computed from
// one corpus; several vector spaces may coexist.
package tfidf

import (
	"regexp"
	"sort"
	"strings"
)

// MinTokenLength is the shortest token kept by Tokenize.
const MinTokenLength = 3

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// stopWords is general English function vocabulary plus drafting boilerplate that
// occurs in nearly every EU legal act. "article", "recital" and "annex" are kept
// so citation queries remain searchable.
var stopWords = map[string]struct{}{
	// English
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {},
	"has": {}, "have": {}, "been": {}, "were": {}, "will": {}, "with": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "from": {}, "they": {}, "them": {}, "their": {},
	"there": {}, "which": {}, "what": {}, "when": {}, "where": {}, "while": {}, "who": {},
	"whom": {}, "whose": {}, "would": {}, "could": {}, "should": {}, "into": {}, "onto": {},
	"upon": {}, "such": {}, "than": {}, "then": {}, "also": {}, "other": {}, "only": {},
	"its": {}, "may": {}, "might": {}, "must": {}, "being": {}, "does": {}, "did": {},
	"each": {}, "more": {}, "most": {}, "some": {}, "very": {}, "about": {}, "after": {},
	"before": {}, "between": {}, "both": {}, "during": {}, "either": {}, "neither": {},
	"nor": {}, "over": {}, "under": {}, "same": {}, "own": {}, "his": {}, "she": {},
	"him": {}, "how": {}, "why": {}, "per": {}, "via": {}, "within": {}, "without": {},
	"because": {}, "through": {}, "further": {}, "whether": {}, "however": {},
	"therefore": {}, "thus": {}, "well": {},
	// EU drafting boilerplate
	"regulation": {}, "regulations": {}, "directive": {}, "directives": {},
	"whereas": {}, "pursuant": {}, "paragraph": {}, "paragraphs": {}, "subparagraph": {},
	"point": {}, "points": {}, "shall": {}, "referred": {}, "accordance": {}, "thereof": {},
	"therein": {}, "hereby": {}, "herein": {}, "having": {}, "regard": {}, "union": {},
	"european": {}, "commission": {}, "council": {}, "parliament": {}, "member": {},
	"state": {}, "states": {}, "treaty": {}, "functioning": {}, "laid": {}, "down": {},
	"provided": {}, "provisions": {}, "apply": {}, "applies": {}, "applicable": {},
	"including": {}, "relevant": {}, "particular": {}, "appropriate": {}, "order": {},
	"related": {}, "respect": {}, "necessary": {}, "ensure": {},
}

// Tokenize lowercases text, replaces every character that is neither a word character
// nor whitespace with a space, splits on whitespace and drops short tokens and stop words.
func Tokenize(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < MinTokenLength {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// IsStopWord reports whether the lowercase word is filtered by Tokenize.
func IsStopWord(word string) bool {
	_, stop := stopWords[word]
	return stop
}

// StopWords returns the stop-word set in sorted order.
func StopWords() []string {
	words := make([]string, 0, len(stopWords))
	for word := range stopWords {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}
