// Package trafilatura extracts a page's main content when no section rule
// matches.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/pagechunk"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements pagechunk.Extractor at compile time.
var _ pagechunk.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
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

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.EEXTRACT, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &pagechunk.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
