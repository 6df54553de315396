// Package goquery extracts titled sections from page markup using CSS
// selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagechunk"
)

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// pageTitle returns the document's <title>, or fallback when absent.
func pageTitle(doc *goquery.Document, fallback string) string {
	if t := squash(doc.Find("head title").First().Text()); t != "" {
		return t
	}
	return fallback
}

// squash collapses all whitespace runs to single spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// blockText converts a selection to text, through conv when available.
func blockText(sel *goquery.Selection, conv pagechunk.Converter, pageURL string) (string, error) {
	if conv == nil {
		return strings.TrimSpace(sel.Text()), nil
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sel.Text()) == "" {
		return "", nil
	}
	return conv.Convert(html, pageURL)
}
