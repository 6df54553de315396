// Package readability provides an alternative main-content extractor.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/pagechunk"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements pagechunk.Extractor at compile time.
var _ pagechunk.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML, pageURL string) (*pagechunk.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagechunk.Errorf(pagechunk.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		u = parsed
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.EEXTRACT, "readability: %v", err)
	}

	return &pagechunk.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
