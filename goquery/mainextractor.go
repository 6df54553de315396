package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.Extractor = (*MainExtractor)(nil)

// MainExtractor returns the page's <main> element, or <body> when there is
// none. It is the last-resort fallback when no section rule matched.
type MainExtractor struct{}

// NewMainExtractor creates a MainExtractor.
func NewMainExtractor() *MainExtractor {
	return &MainExtractor{}
}

// Extract implements pagechunk.Extractor.
func (e *MainExtractor) Extract(html, pageURL string) (*pagechunk.ExtractResult, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	root.Find("script, style, noscript").Remove()

	content, err := goquery.OuterHtml(root)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.EEXTRACT, "render main: %v", err)
	}

	return &pagechunk.ExtractResult{
		Title:       pageTitle(doc, pageURL),
		ContentHTML: content,
	}, nil
}
