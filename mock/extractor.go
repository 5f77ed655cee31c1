package mock

import "github.com/fwojciec/ragdoc"

var (
	_ ragdoc.Extractor         = (*Extractor)(nil)
	_ ragdoc.Converter         = (*Converter)(nil)
	_ ragdoc.FrameworkDetector = (*FrameworkDetector)(nil)
)

// Extractor is a mock implementation of ragdoc.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*ragdoc.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*ragdoc.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of ragdoc.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

// FrameworkDetector is a mock implementation of ragdoc.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) ragdoc.Framework
}

func (d *FrameworkDetector) Detect(html string) ragdoc.Framework {
	return d.DetectFn(html)
}
