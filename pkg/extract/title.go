package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	acronymPattern        = regexp.MustCompile(`(?i)\b(eu|ec|eec|euratom)\b`)
	parentheticalPattern  = regexp.MustCompile(`\(([^()]+)\)`)
	documentNumberPattern = regexp.MustCompile(`(?i)^(?:(?:eu|ec|eec|euratom|cfsp|jha)[\s,/]*)+$|\d+\s*/\s*\d+|^no\.?\s*\d`)
)

// deriveTitle computes the display title from the document's title paragraphs.
func deriveTitle(root *goquery.Selection) string {
	mainTitle := ""
	if first := root.Find(classSelector(documentTitleClasses)).First(); first.Length() > 0 {
		mainTitle = FormatTitle(selectionText(first))
	}

	shortTitle := ""
	root.Find(classSelector(shortTitleScanClasses)).EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		if name, ok := ShortTitle(selectionText(selection)); ok {
			shortTitle = name
			return false
		}
		return true
	})

	return CombineTitles(shortTitle, mainTitle)
}

// FormatTitle title-cases a raw title line and cuts it before the first " of ".
//
//	"REGULATION (EU) 2016/679 OF THE EUROPEAN PARLIAMENT" -> "Regulation (EU) 2016/679"
func FormatTitle(raw string) string {
	titled := titleCase(strings.ToLower(normalizeSpace(raw)))
	if idx := strings.Index(strings.ToLower(titled), " of "); idx >= 0 {
		titled = titled[:idx]
	}
	return acronymPattern.ReplaceAllStringFunc(strings.TrimSpace(titled), strings.ToUpper)
}

// titleCase upper-cases the first letter of every space-separated word.
func titleCase(text string) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		if size == 0 || !unicode.IsLetter(first) {
			continue
		}
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}
	return strings.Join(words, " ")
}

// ShortTitle returns the parenthesized short name of a title line, such as
// "Artificial Intelligence Act". Publication boilerplate ("Text with EEA relevance")
// and document numbers ("(EU)", "No 300/2008") are not short names.
// The last qualifying parenthetical wins, so a trailing short name is preferred.
func ShortTitle(text string) (string, bool) {
	groups := parentheticalPattern.FindAllStringSubmatch(normalizeSpace(text), -1)
	for i := len(groups) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(groups[i][1])
		if isShortName(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isShortName(candidate string) bool {
	if strings.Contains(strings.ToLower(candidate), "eea relevance") {
		return false
	}
	if documentNumberPattern.MatchString(candidate) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(candidate)
	return unicode.IsUpper(first)
}

// CombineTitles joins a short title and the main title as "{short} — {main}".
func CombineTitles(shortTitle, mainTitle string) string {
	switch {
	case shortTitle == "":
		return mainTitle
	case mainTitle == "":
		return shortTitle
	case strings.EqualFold(shortTitle, mainTitle):
		return mainTitle
	}
	return shortTitle + " — " + mainTitle
}
