package mock

import "github.com/fwojciec/pagechunk"

// Compile-time interface verification.
var (
	_ pagechunk.Extractor         = (*Extractor)(nil)
	_ pagechunk.SectionExtractor  = (*SectionExtractor)(nil)
	_ pagechunk.ExtractorSelector = (*ExtractorSelector)(nil)
)

// Extractor is a mock implementation of pagechunk.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*pagechunk.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*pagechunk.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

// SectionExtractor is a mock implementation of pagechunk.SectionExtractor.
type SectionExtractor struct {
	NameFn            func() string
	ExtractSectionsFn func(html, pageURL string) (*pagechunk.SectionResult, error)
}

func (e *SectionExtractor) Name() string {
	return e.NameFn()
}

func (e *SectionExtractor) ExtractSections(html, pageURL string) (*pagechunk.SectionResult, error) {
	return e.ExtractSectionsFn(html, pageURL)
}

// ExtractorSelector is a mock implementation of pagechunk.ExtractorSelector.
type ExtractorSelector struct {
	SelectFn func(url string) []pagechunk.SectionExtractor
}

func (s *ExtractorSelector) Select(url string) []pagechunk.SectionExtractor {
	return s.SelectFn(url)
}
