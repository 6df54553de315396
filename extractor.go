package pagechunk

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// It is the coarse fallback used when no SectionExtractor finds anything.
type Extractor interface {
	Extract(html, pageURL string) (*ExtractResult, error)
}

// SectionResult holds the titled sections found in a page.
type SectionResult struct {
	Title    string
	Sections []Section
}

// SectionExtractor pulls titled sections out of a page's markup.
type SectionExtractor interface {
	// Name identifies the extraction rule, e.g. "toggle".
	Name() string

	// ExtractSections returns the sections it recognizes. A page with no
	// matching blocks yields an empty result, not an error.
	ExtractSections(html, pageURL string) (*SectionResult, error)
}

// ExtractorSelector chooses which section extractors apply to a URL.
type ExtractorSelector interface {
	Select(url string) []SectionExtractor
}
