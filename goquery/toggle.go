package goquery

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.SectionExtractor = (*ToggleExtractor)(nil)

const (
	toggleItemSelector    = "div.et_pb_module.et_pb_toggle.et_pb_toggle_item"
	toggleTitleSelector   = ".et_pb_toggle_title"
	toggleContentSelector = ".et_pb_toggle_content"
)

// GuestsToggleSelector matches the open first toggle on the guests page by
// its exact class attribute.
const GuestsToggleSelector = `div[class="et_pb_module et_pb_toggle et_pb_toggle_0 et_pb_toggle_item et_pb_toggle_open"]`

// ToggleExtractor reads Divi accordion ("toggle") modules: each item's
// title becomes a section title and its content the section text.
type ToggleExtractor struct {
	Converter pagechunk.Converter

	// Preferred, if set, is tried first. The general toggle selector is
	// used only when it matches nothing.
	Preferred string
}

// NewToggleExtractor creates a ToggleExtractor that renders bodies with conv.
func NewToggleExtractor(conv pagechunk.Converter) *ToggleExtractor {
	return &ToggleExtractor{Converter: conv}
}

// Name returns the extractor's identifier.
func (e *ToggleExtractor) Name() string {
	return "toggle"
}

// ExtractSections returns one section per toggle item. Items without a
// title are named "Section N"; items with an empty body are skipped.
func (e *ToggleExtractor) ExtractSections(html, pageURL string) (*pagechunk.SectionResult, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	result := &pagechunk.SectionResult{Title: pageTitle(doc, pageURL)}

	items := doc.Find(toggleItemSelector)
	if e.Preferred != "" {
		if preferred := doc.Find(e.Preferred); preferred.Length() > 0 {
			items = preferred
		}
	}

	var extractErr error
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		title := squash(item.Find(toggleTitleSelector).First().Text())
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}

		body := item.Find(toggleContentSelector).First()
		if body.Length() == 0 {
			body = item
		}
		text, err := blockText(body, e.Converter, pageURL)
		if err != nil {
			extractErr = pagechunk.Errorf(pagechunk.EEXTRACT, "toggle %d: %v", i+1, err)
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
