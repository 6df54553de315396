package goquery

import (
	"strings"

	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.ExtractorSelector = (*Registry)(nil)

// Rule applies an extractor to URLs containing any of Match.
type Rule struct {
	Match     []string
	Extractor pagechunk.SectionExtractor
}

// Registry chooses section extractors by URL substring. Rules are tried in
// registration order and every matching rule contributes its extractor.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a Registry with the given rules.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRules returns the commencement-site rules: text blocks for the
// graduates, directions and FAQ pages; toggles for graduates and guests.
// The guests page prefers its open first toggle.
func DefaultRules(conv pagechunk.Converter) []Rule {
	return []Rule{
		{
			Match:     []string{"/ce/for-graduates", "/a/directions", "/ce/faq"},
			Extractor: NewTextBlockExtractor(conv),
		},
		{
			Match:     []string{"/ce/for-graduates"},
			Extractor: NewToggleExtractor(conv),
		},
		{
			Match:     []string{"/ce/for-guests"},
			Extractor: &ToggleExtractor{Converter: conv, Preferred: GuestsToggleSelector},
		},
	}
}

// Register appends a rule.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Select returns the extractors whose rules match url. Trailing slashes
// are ignored.
func (r *Registry) Select(url string) []pagechunk.SectionExtractor {
	u := strings.TrimRight(url, "/")
	var out []pagechunk.SectionExtractor
	for _, rule := range r.rules {
		for _, m := range rule.Match {
			if strings.Contains(u, m) {
				out = append(out, rule.Extractor)
				break
			}
		}
	}
	return out
}
