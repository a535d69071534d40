// Package library is the law registry: a catalogue of known EU acts with their storage
// locators, canonical links and expected structural counts, plus a loader that
// fetches and parses them from local files, JSON snapshots or EUR-Lex.
package library

import (
	"time"

	"github.com/coolbeans/lexnav/pkg/extract"
)

// ExpectedCounts are the structural counts a correctly parsed act should produce.
// Zero means unknown and is not verified.
type ExpectedCounts struct {
	Articles int `yaml:"articles" json:"articles"`
	Recitals int `yaml:"recitals" json:"recitals"`
	Annexes  int `yaml:"annexes" json:"annexes"`
}

// LawEntry describes one known act.
type LawEntry struct {
	Key        string         `yaml:"key" json:"key"`
	ShortName  string         `yaml:"short_name" json:"short_name"`
	Name       string         `yaml:"name" json:"name"`
	CELEX      string         `yaml:"celex,omitempty" json:"celex,omitempty"`
	SourcePath string         `yaml:"source_path,omitempty" json:"source_path,omitempty"`
	SourceURL  string         `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	Expected   ExpectedCounts `yaml:"expected" json:"expected"`
	Tags       []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Label returns the short name, falling back to the key.
func (entry *LawEntry) Label() string {
	if entry.ShortName != "" {
		return entry.ShortName
	}
	return entry.Key
}

// Catalogue is the on-disk form of a registry.
type Catalogue struct {
	Version string      `yaml:"version" json:"version"`
	Laws    []*LawEntry `yaml:"laws" json:"laws"`
}

// CountMismatch records a structural count that differs from the catalogue.
type CountMismatch struct {
	Field    string `json:"field"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
}

// Law is a loaded and parsed act.
type Law struct {
	Entry       *LawEntry          `json:"entry"`
	Document    *extract.Document  `json:"document"`
	Stats       extract.Statistics `json:"stats"`
	Mismatches  []CountMismatch    `json:"mismatches,omitempty"`
	SourceURL   string             `json:"source_url,omitempty"`
	Source      string             `json:"source"`
	SourceBytes int                `json:"source_bytes"`
	LoadedAt    time.Time          `json:"loaded_at"`
}

// Verified reports whether every known expected count matched.
func (law *Law) Verified() bool {
	return len(law.Mismatches) == 0
}
