// Package clean deduplicates and filters extracted page sections.
package clean

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagechunk"
)

// DefaultMinLength is the text length below which a section matching the
// noise pattern is treated as boilerplate.
const DefaultMinLength = 160

// DefaultNoisePattern matches footer and social boilerplate.
var DefaultNoisePattern = regexp.MustCompile(`(?i)(©\s*Copyright|Follow\s+Us|Resources\s*&\s*Links|Queens College 65-30 Kissena Blvd)`)

// DefaultDenyTitles are section titles that are always dropped.
var DefaultDenyTitles = []string{"Follow Us", "Resources & Links", "© Copyright 2025"}

// Config controls which sections are considered noise.
type Config struct {
	// DenyTitles are dropped whenever the trimmed title matches exactly.
	DenyTitles []string

	// NoisePattern marks a section as noise when it matches the title or
	// text and the text is shorter than MinLength characters.
	NoisePattern *regexp.Regexp
	MinLength    int
}

// DefaultConfig returns the stock cleaning rules.
func DefaultConfig() Config {
	return Config{
		DenyTitles:   append([]string(nil), DefaultDenyTitles...),
		NoisePattern: DefaultNoisePattern,
		MinLength:    DefaultMinLength,
	}
}

// Cleaner removes duplicate and boilerplate sections and merges adjacent
// sections that share a title.
type Cleaner struct {
	deny      map[string]struct{}
	noise     *regexp.Regexp
	minLength int
}

// New creates a Cleaner from cfg.
func New(cfg Config) *Cleaner {
	deny := make(map[string]struct{}, len(cfg.DenyTitles))
	for _, t := range cfg.DenyTitles {
		deny[strings.TrimSpace(t)] = struct{}{}
	}
	return &Cleaner{
		deny:      deny,
		noise:     cfg.NoisePattern,
		minLength: cfg.MinLength,
	}
}

// Clean returns the surviving sections in their original order. It never
// fails; an input with nothing worth keeping yields an empty slice.
func (c *Cleaner) Clean(sections []pagechunk.Section) []pagechunk.Section {
	seen := make(map[uint64]struct{}, len(sections))
	kept := make([]pagechunk.Section, 0, len(sections))

	for _, s := range sections {
		s.Title = strings.TrimSpace(s.Title)
		s.Text = strings.TrimSpace(s.Text)

		fp := fingerprint(s)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		if c.isNoise(s) {
			continue
		}
		kept = append(kept, s)
	}

	return mergeAdjacent(kept)
}

func (c *Cleaner) isNoise(s pagechunk.Section) bool {
	if s.Text == "" {
		return true
	}
	if _, ok := c.deny[s.Title]; ok {
		return true
	}
	if c.noise == nil {
		return false
	}
	if !c.noise.MatchString(s.Title) && !c.noise.MatchString(s.Text) {
		return false
	}
	return utf8.RuneCountInString(s.Text) < c.minLength
}

// fingerprint hashes title and text with a separator so that
// ("ab", "c") and ("a", "bc") differ.
func fingerprint(s pagechunk.Section) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.Title)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(s.Text)
	return d.Sum64()
}

func mergeAdjacent(sections []pagechunk.Section) []pagechunk.Section {
	merged := make([]pagechunk.Section, 0, len(sections))
	for _, s := range sections {
		if n := len(merged); n > 0 && merged[n-1].Title == s.Title {
			merged[n-1].Text += "\n\n" + s.Text
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
