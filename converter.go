package ragdoc

// Converter turns a content region into indexable text.
type Converter interface {
	// Convert transforms clean HTML (e.g., from an Extractor) into text.
	// Empty input yields empty output.
	Convert(html string) (string, error)
}
