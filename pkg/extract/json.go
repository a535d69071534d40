package extract

import (
	"bytes"
	"encoding/json"
	"strings"
)

// structuredKeys are the collections whose presence marks a pre-structured snapshot.
var structuredKeys = []string{"articles", "recitals", "annexes"}

// decodeStructured reads a JSON snapshot of a Document. It reports false when the
// text is not JSON or carries none of the article/recital/annex arrays, in which case
// the caller falls through to markup parsing.
func decodeStructured(text string) (*Document, bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, false
	}

	structured := false
	for _, key := range structuredKeys {
		if raw, ok := fields[key]; ok && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			structured = true
			break
		}
	}
	if !structured {
		return nil, false
	}

	doc := NewDocument()
	if err := json.Unmarshal([]byte(text), doc); err != nil {
		return nil, false
	}

	doc.Articles = compactArticles(doc.Articles)
	doc.Recitals = compactRecitals(doc.Recitals)
	doc.Annexes = compactAnnexes(doc.Annexes)
	sortRecitals(doc.Recitals)
	return doc, true
}

// UnmarshalJSON accepts numeric article numbers as well as strings.
func (a *Article) UnmarshalJSON(data []byte) error {
	type articleAlias Article
	aux := struct {
		Number json.RawMessage `json:"number"`
		*articleAlias
	}{articleAlias: (*articleAlias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Number = identifierString(aux.Number)
	return nil
}

// UnmarshalJSON accepts numeric recital numbers as well as strings.
func (r *Recital) UnmarshalJSON(data []byte) error {
	type recitalAlias Recital
	aux := struct {
		Number json.RawMessage `json:"number"`
		*recitalAlias
	}{recitalAlias: (*recitalAlias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Number = identifierString(aux.Number)
	return nil
}

// UnmarshalJSON accepts numeric annex ids as well as strings.
func (a *Annex) UnmarshalJSON(data []byte) error {
	type annexAlias Annex
	aux := struct {
		ID json.RawMessage `json:"id"`
		*annexAlias
	}{annexAlias: (*annexAlias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ID = identifierString(aux.ID)
	return nil
}

// identifierString renders a JSON string or number as a plain string.
func identifierString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String()
	}
	return string(raw)
}

// compactArticles drops null entries left in a snapshot array.
func compactArticles(articles []*Article) []*Article {
	compacted := make([]*Article, 0, len(articles))
	for _, article := range articles {
		if article != nil {
			compacted = append(compacted, article)
		}
	}
	return compacted
}

func compactRecitals(recitals []*Recital) []*Recital {
	compacted := make([]*Recital, 0, len(recitals))
	for _, recital := range recitals {
		if recital != nil {
			compacted = append(compacted, recital)
		}
	}
	return compacted
}

func compactAnnexes(annexes []*Annex) []*Annex {
	compacted := make([]*Annex, 0, len(annexes))
	for _, annex := range annexes {
		if annex != nil {
			compacted = append(compacted, annex)
		}
	}
	return compacted
}
