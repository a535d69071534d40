package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// markupPolicy is the final filter for rendered markup. Only http, https, mailto and
// relative URLs survive, and elements outside the policy (svg, math) are dropped.
var markupPolicy = newMarkupPolicy()

func newMarkupPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	return policy
}

// blockedElements are dropped entirely from rendered markup, including their content.
var blockedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"form":     true,
	"link":     true,
	"meta":     true,
	"noscript": true,
}

// foreignElements are SVG and MathML roots, dropped with their content.
var foreignElements = map[string]bool{
	"svg":  true,
	"math": true,
}

// blockElements get a separating space when flattened to plain text.
var blockElements = map[string]bool{
	"p": true, "div": true, "td": true, "th": true, "tr": true, "li": true,
	"br": true, "table": true, "tbody": true, "thead": true, "ul": true, "ol": true,
	"dt": true, "dd": true, "dl": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "caption": true,
}

// renderOptions control how a subtree snapshot is rendered.
// The source tree is never modified; a cleaned copy is built and rendered instead.
type renderOptions struct {
	skip     map[*html.Node]bool
	addClass map[*html.Node]string
}

// PlainText strips markup from an HTML fragment and normalizes whitespace.
func PlainText(markup string) string {
	if !strings.Contains(markup, "<") {
		return normalizeSpace(html.UnescapeString(markup))
	}
	fragment, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return normalizeSpace(markup)
	}
	return selectionText(fragment.Selection)
}

// selectionText flattens a selection to normalized plain text.
func selectionText(selection *goquery.Selection) string {
	var builder strings.Builder
	for _, node := range selection.Nodes {
		writeText(&builder, node)
	}
	return normalizeSpace(builder.String())
}

func writeText(builder *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		builder.WriteString(node.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if blockedElements[node.Data] {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeText(builder, child)
	}
	if node.Type == html.ElementNode && blockElements[node.Data] {
		builder.WriteByte(' ')
	}
}

// normalizeSpace collapses runs of whitespace (including non-breaking spaces) to single spaces.
func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// innerHTML renders the sanitized children of the first node in the selection.
func innerHTML(selection *goquery.Selection, opts renderOptions) string {
	if selection.Length() == 0 {
		return ""
	}
	var builder strings.Builder
	parent := selection.Nodes[0]
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if !keepNode(child, opts) {
			continue
		}
		if err := html.Render(&builder, cleanCopy(child, opts)); err != nil {
			continue
		}
	}
	return strings.TrimSpace(markupPolicy.Sanitize(builder.String()))
}

// keepNode reports whether a node survives sanitizing.
func keepNode(node *html.Node, opts renderOptions) bool {
	if opts.skip[node] {
		return false
	}
	switch node.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.ElementNode:
		return !blockedElements[node.Data] && !foreignElements[node.Data]
	}
	return true
}

// cleanCopy builds a detached deep copy of node without skipped or blocked children.
func cleanCopy(node *html.Node, opts renderOptions) *html.Node {
	copied := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
	}
	copied.Attr = append(copied.Attr, node.Attr...)
	if class, ok := opts.addClass[node]; ok {
		copied.Attr = withClass(copied.Attr, class)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if keepNode(child, opts) {
			copied.AppendChild(cleanCopy(child, opts))
		}
	}
	return copied
}

// withClass appends a class name to the class attribute, creating it if needed.
func withClass(attrs []html.Attribute, class string) []html.Attribute {
	for i, attr := range attrs {
		if attr.Key == "class" {
			if attr.Val == "" {
				attrs[i].Val = class
			} else {
				attrs[i].Val = attr.Val + " " + class
			}
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: "class", Val: class})
}
