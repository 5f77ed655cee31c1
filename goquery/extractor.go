// Package goquery isolates and flattens documentation content with goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
)

// Ensure Extractor implements ragdoc.Extractor at compile time.
var _ ragdoc.Extractor = (*Extractor)(nil)

// strippedElements never contribute text.
const strippedElements = "script, style, noscript"

// Extractor returns the first element matching a CSS selector.
type Extractor struct {
	selector string
	detector *Detector
}

// NewExtractor creates an Extractor for selector. With ragdoc.SelectorAuto
// the selector is chosen per page from the detected framework.
func NewExtractor(selector string) *Extractor {
	e := &Extractor{selector: selector}
	if selector == ragdoc.SelectorAuto {
		e.detector = NewDetector()
	}
	return e
}

// Extract parses html and returns the region matched by the selector with
// script, style and noscript elements removed. A page without a match
// yields an empty ContentHTML.
func (e *Extractor) Extract(html string) (*ragdoc.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "failed to parse HTML: %v", err)
	}

	result := &ragdoc.ExtractResult{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	selector := e.selector
	if e.detector != nil {
		selector = ContentSelector(e.detector.detect(doc))
	}

	region := doc.Find(selector).First()
	if region.Length() == 0 {
		return result, nil
	}
	region.Find(strippedElements).Remove()

	content, err := goquery.OuterHtml(region)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "failed to render content: %v", err)
	}
	result.ContentHTML = content
	return result, nil
}
