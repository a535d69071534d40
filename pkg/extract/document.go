// Package extract provides document parsing and structure extraction for EU legislative texts.
package extract

import (
	"strconv"
	"strings"
)

// Document represents a parsed legal instrument.
//
// Articles and annexes are kept in parse order. Recitals are sorted ascending
// by the numeric value of their number once parsing completes.
type Document struct {
	Title     string     `json:"title"`
	Articles  []*Article `json:"articles"`
	Recitals  []*Recital `json:"recitals"`
	Annexes   []*Annex   `json:"annexes"`
	SourceURL string     `json:"sourceUrl,omitempty"`
}

// Heading is a chapter or section heading captured from the running cursor.
type Heading struct {
	Number string `json:"number"`
	Title  string `json:"title"`
}

// IsZero reports whether the heading carries no number and no title.
func (h Heading) IsZero() bool {
	return h.Number == "" && h.Title == ""
}

// Division is the chapter/section ancestry of an article at the time it was parsed.
type Division struct {
	Chapter Heading `json:"chapter"`
	Section Heading `json:"section"`
}

// Article represents a numbered binding provision.
type Article struct {
	Number   string   `json:"number"`
	Title    string   `json:"title,omitempty"`
	Division Division `json:"division"`
	BodyHTML string   `json:"bodyHtml"`
}

// PlainText returns the article body with markup removed and whitespace normalized.
func (a *Article) PlainText() string {
	return PlainText(a.BodyHTML)
}

// Recital represents a numbered preambular paragraph.
type Recital struct {
	Number string `json:"number"`
	Text   string `json:"text"`
	HTML   string `json:"html"`
}

// NumericValue returns the recital number as an integer, or 0 when it is not numeric.
func (r *Recital) NumericValue() int {
	value, err := strconv.Atoi(strings.TrimSpace(r.Number))
	if err != nil {
		return 0
	}
	return value
}

// Annex represents a supplementary appendix.
type Annex struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Statistics holds structural counts for a parsed document.
type Statistics struct {
	Articles int `json:"articles"`
	Recitals int `json:"recitals"`
	Annexes  int `json:"annexes"`
	Chapters int `json:"chapters"`
	Sections int `json:"sections"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() *Document {
	return &Document{
		Articles: make([]*Article, 0),
		Recitals: make([]*Recital, 0),
		Annexes:  make([]*Annex, 0),
	}
}

// IsEmpty reports whether no articles, recitals or annexes were found.
// Callers use this to decide whether a parse was usable.
func (d *Document) IsEmpty() bool {
	return len(d.Articles) == 0 && len(d.Recitals) == 0 && len(d.Annexes) == 0
}

// Statistics returns statistics about the parsed document.
// Chapters and sections are counted as distinct headings seen in article divisions.
func (d *Document) Statistics() Statistics {
	stats := Statistics{
		Articles: len(d.Articles),
		Recitals: len(d.Recitals),
		Annexes:  len(d.Annexes),
	}

	seenChapters := make(map[Heading]bool)
	seenSections := make(map[Division]bool)
	for _, article := range d.Articles {
		if !article.Division.Chapter.IsZero() && !seenChapters[article.Division.Chapter] {
			seenChapters[article.Division.Chapter] = true
			stats.Chapters++
		}
		if !article.Division.Section.IsZero() && !seenSections[article.Division] {
			seenSections[article.Division] = true
			stats.Sections++
		}
	}

	return stats
}

// Article returns an article by number, or nil if not found.
func (d *Document) Article(number string) *Article {
	for _, article := range d.Articles {
		if article.Number == number {
			return article
		}
	}
	return nil
}

// Recital returns a recital by number, or nil if not found.
func (d *Document) Recital(number string) *Recital {
	for _, recital := range d.Recitals {
		if recital.Number == number {
			return recital
		}
	}
	return nil
}

// Annex returns an annex by id, or nil if not found. The comparison ignores case.
func (d *Document) Annex(id string) *Annex {
	for _, annex := range d.Annexes {
		if strings.EqualFold(annex.ID, id) {
			return annex
		}
	}
	return nil
}
