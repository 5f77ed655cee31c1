package ragdoc

// ExtractResult holds the content region isolated from an HTML page.
type ExtractResult struct {
	// Title is the page title, when the extractor can determine it.
	Title string

	// ContentHTML is the HTML of the main content region with scripts and
	// styles removed. It is empty when the region was not found.
	ContentHTML string
}

// Extractor isolates the main content region of an HTML page.
type Extractor interface {
	// Extract parses raw HTML and returns the content region.
	// A page without the region is not an error.
	Extract(html string) (*ExtractResult, error)
}
