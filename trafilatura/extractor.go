// Package trafilatura isolates main content on pages without a known
// content selector, using boilerplate removal.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/ragdoc"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements ragdoc.Extractor at compile time.
var _ ragdoc.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Its fallback path runs readability and
// dom-distiller when the primary heuristics find too little text.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}
	return &Extractor{opts: opts}
}

// Extract processes raw HTML and returns the main content. Pages on which
// no content is found yield an empty ContentHTML.
func (e *Extractor) Extract(rawHTML string) (*ragdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return &ragdoc.ExtractResult{}, nil
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "extracting content: %v", err)
	}

	out := &ragdoc.ExtractResult{Title: result.Metadata.Title}
	if result.ContentNode == nil {
		return out, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, ragdoc.Errorf(ragdoc.EPARSE, "rendering content: %v", err)
	}
	out.ContentHTML = buf.String()
	return out, nil
}
