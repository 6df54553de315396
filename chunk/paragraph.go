package chunk

import (
	"regexp"
	"strings"
)

var paragraphRe = regexp.MustCompile(`\n[ \t]*\n`)

// ParagraphChunker packs blank-line separated paragraphs greedily into
// chunks of at most MaxSize characters. Chunks that are still too long are
// hard-wrapped at MaxSize, so no chunk ever exceeds the bound.
type ParagraphChunker struct {
	MaxSize int
}

// Split implements pagechunk.Chunker.
func (c *ParagraphChunker) Split(text string) []string {
	var (
		packed []string
		cur    string
	)
	for _, p := range paragraphRe.Split(Normalize(text), -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if cur == "" {
			cur = p
			continue
		}
		if runeLen(cur)+2+runeLen(p) <= c.MaxSize {
			cur += "\n\n" + p
			continue
		}
		packed = append(packed, cur)
		cur = p
	}
	if cur != "" {
		packed = append(packed, cur)
	}

	var out []string
	for _, p := range packed {
		out = append(out, c.wrap(p)...)
	}
	return out
}

func (c *ParagraphChunker) wrap(s string) []string {
	runes := []rune(s)
	if len(runes) <= c.MaxSize {
		return []string{s}
	}
	var out []string
	for i := 0; i < len(runes); i += c.MaxSize {
		piece := strings.TrimSpace(string(runes[i:min(i+c.MaxSize, len(runes))]))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
