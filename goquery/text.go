package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
	"golang.org/x/net/html"
)

// Ensure TextConverter implements ragdoc.Converter at compile time.
var _ ragdoc.Converter = (*TextConverter)(nil)

// TextConverter flattens HTML into plain text. Text nodes are joined with a
// single space and every run of whitespace is collapsed.
type TextConverter struct{}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

// Convert returns the visible text of content.
func (c *TextConverter) Convert(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", ragdoc.Errorf(ragdoc.EPARSE, "failed to parse HTML: %v", err)
	}

	var words []string
	for _, n := range doc.Nodes {
		words = appendText(words, n)
	}
	return strings.Join(words, " "), nil
}

// appendText appends the whitespace-separated words of every text node
// under n in document order.
func appendText(words []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		return append(words, strings.Fields(n.Data)...)
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "head":
			return words
		}
	case html.CommentNode:
		return words
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		words = appendText(words, child)
	}
	return words
}
