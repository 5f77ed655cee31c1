package crawl

import (
	"unicode/utf8"

	"github.com/fwojciec/ragdoc"
)

// DefaultMaxTextLength caps the text kept per page, in runes.
const DefaultMaxTextLength = 100000

// ContentExtractor turns fetched HTML into the text stored for a page:
// the Extractor isolates the content region, the Converter flattens it,
// and the result is silently cut to MaxLength runes.
type ContentExtractor struct {
	Extractor ragdoc.Extractor
	Converter ragdoc.Converter
	MaxLength int
}

// Extract returns the page text. A page without the content region yields
// an empty string and no error.
func (c *ContentExtractor) Extract(html string) (string, error) {
	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return "", err
	}
	if extracted.ContentHTML == "" {
		return "", nil
	}

	text, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", err
	}
	return truncateRunes(text, c.MaxLength), nil
}

// truncateRunes returns the first n runes of s. n <= 0 means no limit.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
