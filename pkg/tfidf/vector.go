package tfidf

import (
	"math"
)

// IDF maps a term to its inverse document frequency within one corpus.
type IDF map[string]float64

// Vector is a sparse TF-IDF vector with its precomputed Euclidean norm.
type Vector struct {
	Terms     map[string]float64
	Magnitude float64
}

// ComputeIDF scores every term as log10(N / df), where N is the number of token
// lists in the corpus and df the number of lists containing the term at least once.
func ComputeIDF(corpus [][]string) IDF {
	documentFrequency := make(map[string]int)
	for _, tokens := range corpus {
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			documentFrequency[token]++
		}
	}

	total := float64(len(corpus))
	idf := make(IDF, len(documentFrequency))
	for term, df := range documentFrequency {
		idf[term] = math.Log10(total / float64(df))
	}
	return idf
}

// ComputeVector weights the raw term counts of tokens by idf. Terms missing from
// idf are dropped.
func ComputeVector(tokens []string, idf IDF) Vector {
	counts := make(map[string]int)
	for _, token := range tokens {
		if _, ok := idf[token]; ok {
			counts[token]++
		}
	}

	terms := make(map[string]float64, len(counts))
	sumSquares := 0.0
	for term, count := range counts {
		score := float64(count) * idf[term]
		terms[term] = score
		sumSquares += score * score
	}

	return Vector{
		Terms:     terms,
		Magnitude: math.Sqrt(sumSquares),
	}
}

// Vectorize tokenizes text and weights it against idf.
func Vectorize(text string, idf IDF) Vector {
	return ComputeVector(Tokenize(text), idf)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It is exactly 0 when either vector has zero magnitude.
func CosineSimilarity(a, b Vector) float64 {
	if a.Magnitude == 0 || b.Magnitude == 0 {
		return 0
	}

	smaller, larger := a.Terms, b.Terms
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}

	dot := 0.0
	for term, score := range smaller {
		if other, ok := larger[term]; ok {
			dot += score * other
		}
	}

	similarity := dot / (a.Magnitude * b.Magnitude)
	if similarity > 1 {
		return 1
	}
	if similarity < 0 {
		return 0
	}
	return similarity
}

// SharedTerms returns the terms present in both vectors.
func SharedTerms(a, b Vector) []string {
	smaller, larger := a.Terms, b.Terms
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}

	shared := make([]string, 0)
	for term := range smaller {
		if _, ok := larger[term]; ok {
			shared = append(shared, term)
		}
	}
	return shared
}
