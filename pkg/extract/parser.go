package extract

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// pendingHeader records which division heading still awaits its title line.
type pendingHeader int

const (
	pendingNone pendingHeader = iota
	pendingChapter
	pendingSection
)

// Parser converts EUR-Lex markup (OJ and consolidated layouts) or pre-structured
// JSON into a Document. A Parser holds only compiled patterns and is safe for
// concurrent use.
type Parser struct {
	articleNumberPattern *regexp.Regexp
	digitsPattern        *regexp.Regexp
	annexPattern         *regexp.Regexp
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{
		articleNumberPattern: regexp.MustCompile(`(?i)\barticle\s+(\d+[a-z]*)`),
		digitsPattern:        regexp.MustCompile(`\d+`),
		// Matched against upper-cased heading text.
		annexPattern: regexp.MustCompile(`^ANNEX(?:\s+((?:[IVXLCDM]+|\d+)[A-Z]?))?\b`),
	}
}

var defaultParser = NewParser()

// ParseAny parses a document using the default parser.
func ParseAny(text string) *Document {
	return defaultParser.ParseAny(text)
}

// Parse reads the whole input and parses it. The only error returned is a read failure;
// unrecognized content yields an empty document.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return p.ParseAny(string(data)), nil
}

// ParseAny detects whether text is a pre-structured JSON snapshot or markup and parses it.
// It never fails: empty or unrecognized input produces an empty Document.
func (p *Parser) ParseAny(text string) *Document {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NewDocument()
	}
	if doc, ok := decodeStructured(trimmed); ok {
		return doc
	}
	return p.parseMarkup(trimmed)
}

// scanState is the cursor threaded through one forward scan.
type scanState struct {
	doc            *Document
	currentChapter Heading
	currentSection Heading
	pending        pendingHeader
}

func (state *scanState) division() Division {
	return Division{
		Chapter: state.currentChapter,
		Section: state.currentSection,
	}
}

func (p *Parser) parseMarkup(text string) *Document {
	doc := NewDocument()

	root, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return doc
	}

	doc.Title = deriveTitle(root.Selection)
	if canonical, ok := root.Find("link[rel='canonical']").First().Attr("href"); ok {
		doc.SourceURL = strings.TrimSpace(canonical)
	}

	state := &scanState{doc: doc}
	root.Find("*").Each(func(_ int, selection *goquery.Selection) {
		p.visit(state, selection)
	})

	sortRecitals(doc.Recitals)
	return doc
}

// visit handles one element in document (depth-first pre-order) order.
func (p *Parser) visit(state *scanState, selection *goquery.Selection) {
	switch p.classify(selection) {
	case KindChapterHeading:
		text := selectionText(selection)
		state.currentChapter = Heading{Number: headingNumber(text, "CHAPTER")}
		state.currentSection = Heading{}
		state.pending = pendingChapter
	case KindSectionHeading:
		text := selectionText(selection)
		state.currentSection = Heading{Number: headingNumber(text, "SECTION")}
		state.pending = pendingSection
	case KindHeadingTitle:
		title := selectionText(selection)
		switch state.pending {
		case pendingChapter:
			state.currentChapter.Title = title
		case pendingSection:
			state.currentSection.Title = title
		}
		state.pending = pendingNone
	case KindRecitalBlock:
		if recital := p.parseRecital(state, selection); recital != nil {
			state.doc.Recitals = append(state.doc.Recitals, recital)
		}
	case KindArticleMarker:
		state.pending = pendingNone
		state.doc.Articles = append(state.doc.Articles, p.parseArticle(state, selection))
	case KindAnnexHeading:
		state.pending = pendingNone
		state.doc.Annexes = append(state.doc.Annexes, p.parseAnnex(selection))
	}
}

// headingNumber strips the kind keyword ("CHAPTER III" -> "III").
// Headings that do not start with the keyword keep their full text.
func headingNumber(text, keyword string) string {
	if len(text) >= len(keyword) && strings.EqualFold(text[:len(keyword)], keyword) {
		return strings.TrimSpace(text[len(keyword):])
	}
	return text
}

// parseRecital reads a recital from its two-cell table layout, falling back to the
// whole block when no such row exists.
func (p *Parser) parseRecital(state *scanState, block *goquery.Selection) *Recital {
	row := block.Find("tr").FilterFunction(func(_ int, candidate *goquery.Selection) bool {
		return candidate.ChildrenFiltered("td").Length() >= 2
	}).First()

	if row.Length() > 0 {
		cells := row.ChildrenFiltered("td")
		numberCell := cells.Eq(0)
		bodyCell := cells.Eq(1)
		return &Recital{
			Number: p.recitalNumber(selectionText(numberCell), state),
			Text:   selectionText(bodyCell),
			HTML:   innerHTML(bodyCell, renderOptions{}),
		}
	}

	opts := renderOptions{}
	numberText := ""
	if marker := block.Find(classSelector(recitalNumberClasses)).First(); marker.Length() > 0 {
		numberText = selectionText(marker)
		opts.skip = map[*html.Node]bool{marker.Nodes[0]: true}
	}

	markup := innerHTML(block, opts)
	text := PlainText(markup)
	if text == "" {
		return nil
	}

	return &Recital{
		Number: p.recitalNumber(numberText, state),
		Text:   text,
		HTML:   markup,
	}
}

// recitalNumber extracts the digits of "(12)"; without digits the next sequential
// position is used.
func (p *Parser) recitalNumber(text string, state *scanState) string {
	if digits := p.digitsPattern.FindString(text); digits != "" {
		return digits
	}
	return strconv.Itoa(len(state.doc.Recitals) + 1)
}

// parseArticle builds an article from its number marker and enclosing container.
func (p *Parser) parseArticle(state *scanState, marker *goquery.Selection) *Article {
	number := strconv.Itoa(len(state.doc.Articles) + 1)
	if m := p.articleNumberPattern.FindStringSubmatch(selectionText(marker)); m != nil {
		number = m[1]
	}

	container := articleContainer(marker)
	title := selectionText(container.Find(classSelector(articleTitleClasses)).First())

	return &Article{
		Number:   number,
		Title:    title,
		Division: state.division(),
		BodyHTML: innerHTML(container, renderOptions{}),
	}
}

// articleContainer finds the nearest ancestor representing one article.
func articleContainer(marker *goquery.Selection) *goquery.Selection {
	for _, selector := range []string{"[id^='art_']", ".eli-subdivision", ".article"} {
		if container := marker.Parent().Closest(selector); container.Length() > 0 {
			return container
		}
	}
	return marker.Parent()
}

// parseAnnex builds an annex from its heading, optional subtitle and enclosing container.
func (p *Parser) parseAnnex(heading *goquery.Selection) *Annex {
	headingText := selectionText(heading)
	title := headingText

	opts := renderOptions{
		skip: map[*html.Node]bool{heading.Nodes[0]: true},
	}
	if subtitle := p.annexSubtitle(heading); subtitle != nil {
		if subtitleText := selectionText(subtitle); subtitleText != "" {
			title = headingText + " - " + subtitleText
		}
		opts.addClass = map[*html.Node]string{subtitle.Nodes[0]: "annex-subtitle"}
	}

	id := title
	if m := p.annexPattern.FindStringSubmatch(strings.ToUpper(headingText)); m != nil && m[1] != "" {
		id = m[1]
	}

	return &Annex{
		ID:    id,
		Title: title,
		HTML:  innerHTML(annexContainer(heading), opts),
	}
}

// annexSubtitle looks for the element naming the annex: the immediate sibling when it
// carries a subtitle class, or, when the heading ends its wrapper, the following block.
func (p *Parser) annexSubtitle(heading *goquery.Selection) *goquery.Selection {
	next := heading.Next()
	if next.Length() > 0 {
		if hasAnyClass(next, annexSubtitleClasses) && p.classify(next) != KindAnnexHeading {
			return next
		}
		return nil
	}

	block := heading.Parent().Next()
	if block.Length() == 0 {
		return nil
	}
	if hasAnyClass(block, annexSubtitleClasses) && p.classify(block) != KindAnnexHeading {
		return block
	}
	if child := block.Children().First(); child.Length() > 0 && hasAnyClass(child, annexSubtitleClasses) && p.classify(child) != KindAnnexHeading {
		return child
	}
	return nil
}

// annexContainer finds the nearest ancestor wrapping the whole annex.
func annexContainer(heading *goquery.Selection) *goquery.Selection {
	for _, selector := range []string{"[id^='anx_']", ".eli-container", ".annex"} {
		if container := heading.Parent().Closest(selector); container.Length() > 0 {
			return container
		}
	}
	return heading.Parent()
}

// sortRecitals orders recitals by numeric value. Non-numeric numbers count as 0 and
// therefore sort first; equal values keep parse order.
func sortRecitals(recitals []*Recital) {
	sort.SliceStable(recitals, func(i, j int) bool {
		return recitals[i].NumericValue() < recitals[j].NumericValue()
	})
}
