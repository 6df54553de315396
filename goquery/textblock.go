package goquery

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.SectionExtractor = (*TextBlockExtractor)(nil)

// textBlockSelector matches only elements whose class attribute is exactly
// "et_pb_text_inner", skipping variants that carry extra classes.
const textBlockSelector = `div[class="et_pb_text_inner"]`

// TextBlockExtractor reads Divi text modules. A block is titled by its
// first non-empty heading, else the nearest heading before it in the
// document, else "Text Block N".
type TextBlockExtractor struct {
	Converter pagechunk.Converter
}

// NewTextBlockExtractor creates a TextBlockExtractor that renders bodies with conv.
func NewTextBlockExtractor(conv pagechunk.Converter) *TextBlockExtractor {
	return &TextBlockExtractor{Converter: conv}
}

// Name returns the extractor's identifier.
func (e *TextBlockExtractor) Name() string {
	return "text-inner"
}

// ExtractSections returns one section per non-empty text block.
func (e *TextBlockExtractor) ExtractSections(rawHTML, pageURL string) (*pagechunk.SectionResult, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	result := &pagechunk.SectionResult{Title: pageTitle(doc, pageURL)}

	// Walk headings and blocks together in document order so each block
	// can see the last heading that precedes it.
	var (
		lastHeading string
		n           int
		extractErr  error
	)
	doc.Find("h2, h3, h4, h5, h6, " + textBlockSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !sel.Is(textBlockSelector) {
			if t := squash(sel.Text()); t != "" {
				lastHeading = t
			}
			return true
		}

		n++
		title := squash(sel.Find("h1, h2, h3, h4, h5, h6").FilterFunction(func(_ int, h *goquery.Selection) bool {
			return squash(h.Text()) != ""
		}).First().Text())
		if title == "" {
			title = lastHeading
		}
		if title == "" {
			title = fmt.Sprintf("Text Block %d", n)
		}

		text, err := blockText(sel, e.Converter, pageURL)
		if err != nil {
			extractErr = pagechunk.Errorf(pagechunk.EEXTRACT, "text block %d: %v", n, err)
			return false
		}
		if text != "" {
			result.Sections = append(result.Sections, pagechunk.Section{Title: title, Text: text})
		}
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return result, nil
}
