package pagechunk

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// Section is a titled block of plain text extracted from a page.
type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SectionSHA1 returns the hex SHA-1 of a section's text.
func SectionSHA1(text string) string {
	return sha1Hex(text)
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

// SplitMarkdown splits markdown into sections at its headings (H1-H6).
// Content before the first heading is titled fallbackTitle. Headings inside
// fenced code blocks are treated as text. Sections with no body are skipped.
func SplitMarkdown(markdown, fallbackTitle string) []Section {
	if strings.TrimSpace(markdown) == "" {
		return nil
	}

	var (
		sections []Section
		title    = fallbackTitle
		body     strings.Builder
		inFence  bool
	)

	flush := func() {
		text := strings.TrimSpace(body.String())
		if text != "" {
			sections = append(sections, Section{Title: title, Text: text})
		}
		body.Reset()
	}

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRe.FindStringSubmatch(line); m != nil {
				flush()
				title = m[2]
				continue
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
