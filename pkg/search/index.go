// Package search builds a free-text index over the articles, recitals and annexes of
// one or more documents and answers citation-aware queries against it.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/coolbeans/lexnav/pkg/extract"
	"github.com/coolbeans/lexnav/pkg/tfidf"
)

// UnitType identifies the kind of indexed provision.
type UnitType string

const (
	UnitArticle UnitType = "article"
	UnitRecital UnitType = "recital"
	UnitAnnex   UnitType = "annex"
)

// PreviewLength is the number of characters of plain text kept in a preview.
const PreviewLength = 150

// Law tags units with the document they came from.
type Law struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label,omitempty"`
}

// Unit is one searchable provision.
type Unit struct {
	Type  UnitType `json:"type"`
	ID    string   `json:"id"`
	Title string   `json:"title"`
	HTML  string   `json:"html"`
	Law   Law      `json:"law"`
}

// UnitsFromDocument lists every article, recital and annex of doc as search units.
func UnitsFromDocument(law Law, doc *extract.Document) []Unit {
	if doc == nil {
		return nil
	}

	units := make([]Unit, 0, len(doc.Articles)+len(doc.Recitals)+len(doc.Annexes))
	for _, article := range doc.Articles {
		title := "Art. " + article.Number
		if article.Title != "" {
			title += " - " + article.Title
		}
		units = append(units, Unit{Type: UnitArticle, ID: article.Number, Title: title, HTML: article.BodyHTML, Law: law})
	}
	for _, recital := range doc.Recitals {
		units = append(units, Unit{Type: UnitRecital, ID: recital.Number, Title: "Recital " + recital.Number, HTML: recital.HTML, Law: law})
	}
	for _, annex := range doc.Annexes {
		title := annex.Title
		if title == "" {
			title = "Annex " + annex.ID
		}
		units = append(units, Unit{Type: UnitAnnex, ID: annex.ID, Title: title, HTML: annex.HTML, Law: law})
	}
	return units
}

// entry is an indexed unit with its derived text and vector.
type entry struct {
	unit      Unit
	plainText string
	preview   string
	vector    tfidf.Vector
}

// Index is an immutable search index. Rebuild it whenever the unit set changes.
type Index struct {
	entries []entry
	idf     tfidf.IDF
}

// BuildIndex computes one shared IDF across all units and a vector per unit.
func BuildIndex(units []Unit) *Index {
	entries := make([]entry, len(units))
	corpus := make([][]string, len(units))

	for i, unit := range units {
		plainText := extract.PlainText(unit.HTML)
		entries[i] = entry{
			unit:      unit,
			plainText: plainText,
			preview:   preview(plainText),
		}
		corpus[i] = tfidf.Tokenize(strings.Join([]string{plainText, unit.Title, string(unit.Type), unit.ID}, " "))
	}

	idf := tfidf.ComputeIDF(corpus)
	for i := range entries {
		entries[i].vector = tfidf.ComputeVector(corpus[i], idf)
	}

	return &Index{entries: entries, idf: idf}
}

// Len returns the number of indexed units.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// preview keeps the first PreviewLength characters and always appends an ellipsis.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text + "..."
	}
	return string([]rune(text)[:PreviewLength]) + "..."
}
