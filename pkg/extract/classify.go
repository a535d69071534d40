package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NodeKind is the structural role of a markup element.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindChapterHeading
	KindSectionHeading
	KindHeadingTitle
	KindRecitalBlock
	KindArticleMarker
	KindAnnexHeading
)

// String returns a readable name for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindChapterHeading:
		return "chapter-heading"
	case KindSectionHeading:
		return "section-heading"
	case KindHeadingTitle:
		return "heading-title"
	case KindRecitalBlock:
		return "recital-block"
	case KindArticleMarker:
		return "article-marker"
	case KindAnnexHeading:
		return "annex-heading"
	default:
		return "other"
	}
}

// Class names used by the OJ layout ("oj-" prefixed and the older unprefixed form)
// and by the consolidated layout.
var (
	documentTitleClasses   = []string{"oj-doc-ti", "doc-ti", "title-doc-first"}
	shortTitleScanClasses  = []string{"oj-doc-ti", "doc-ti", "title-doc-first", "title-doc-last"}
	divisionHeadingClasses = []string{"oj-ti-section-1", "ti-section-1", "title-division-1"}
	divisionTitleClasses   = []string{"oj-ti-section-2", "ti-section-2", "title-division-2"}
	articleMarkerClasses   = []string{"oj-ti-art", "ti-art", "title-article-norm"}
	articleTitleClasses    = []string{"oj-sti-art", "sti-art", "stitle-article-norm"}
	annexTitleClasses      = []string{"title-annex-1"}
	annexSubtitleClasses   = []string{"oj-ti-grseq-1", "ti-grseq-1", "title-annex-2", "title-gr-seq-level-1", "oj-doc-ti", "doc-ti"}
	recitalNumberClasses   = []string{"no-parag", "oj-no-parag", "recital-number"}
)

// hasAnyClass reports whether the selection carries at least one of the classes.
func hasAnyClass(selection *goquery.Selection, classes []string) bool {
	for _, class := range classes {
		if selection.HasClass(class) {
			return true
		}
	}
	return false
}

// classSelector builds a CSS selector list matching any of the classes.
func classSelector(classes []string) string {
	parts := make([]string, len(classes))
	for i, class := range classes {
		parts[i] = "." + class
	}
	return strings.Join(parts, ", ")
}

// isRecitalContainer reports whether the element wraps one recital.
// The OJ layout marks these with ids such as "rct_12".
func isRecitalContainer(selection *goquery.Selection) bool {
	if id, ok := selection.Attr("id"); ok && strings.HasPrefix(id, "rct_") {
		return !strings.Contains(id, ".")
	}
	return selection.HasClass("recital")
}

// classify decides the structural role of an element. It is evaluated once per node.
func (p *Parser) classify(selection *goquery.Selection) NodeKind {
	switch {
	case isRecitalContainer(selection):
		return KindRecitalBlock
	case hasAnyClass(selection, articleMarkerClasses):
		return KindArticleMarker
	case hasAnyClass(selection, divisionHeadingClasses):
		upper := strings.ToUpper(selectionText(selection))
		if strings.HasPrefix(upper, "SECTION") {
			return KindSectionHeading
		}
		// CHAPTER, and anything unrecognized (TITLE, PART), opens a chapter-level division.
		return KindChapterHeading
	case hasAnyClass(selection, divisionTitleClasses):
		return KindHeadingTitle
	case hasAnyClass(selection, annexTitleClasses):
		return KindAnnexHeading
	case selection.Is("p") && hasAnyClass(selection, documentTitleClasses):
		if p.annexPattern.MatchString(strings.ToUpper(selectionText(selection))) {
			return KindAnnexHeading
		}
	}
	return KindOther
}
