package chunk

import (
	"strings"
)

// minSentenceLength is the length below which a sentence absorbs its
// successor, so that fragments like "Q." do not form their own unit.
const minSentenceLength = 60

// SentenceChunker packs whole sentences greedily into chunks of at most
// MaxSize characters. Each chunk after the first is seeded with the
// word-snapped trailing Overlap characters of its predecessor.
//
// A single sentence longer than MaxSize is emitted alone and exceeds the
// bound; sentences are never cut.
type SentenceChunker struct {
	MaxSize int
	Overlap int
}

// Split implements pagechunk.Chunker.
func (c *SentenceChunker) Split(text string) []string {
	sentences := Sentences(Normalize(text))
	if len(sentences) == 0 {
		return nil
	}

	var (
		chunks []string
		buf    []string
		size   int
	)
	for _, s := range sentences {
		n := runeLen(s)
		if size+n+1 <= c.MaxSize {
			buf = append(buf, s)
			size += n + 1
			continue
		}

		if len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
		}
		buf, size = buf[:0], 0

		if len(chunks) > 0 {
			budget := min(c.Overlap, c.MaxSize-n-1)
			if seed := TrailingOverlap(chunks[len(chunks)-1], budget); seed != "" {
				buf = append(buf, seed)
				size = runeLen(seed)
			}
		}
		buf = append(buf, s)
		size += n + 1
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}

	out := chunks[:0]
	for _, ch := range chunks {
		if ch = strings.TrimSpace(ch); ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

// Sentences splits text after '.', '!' or '?' followed by whitespace.
// A sentence shorter than 60 characters absorbs the one that follows it.
func Sentences(text string) []string {
	var parts []string
	runes := []rune(strings.TrimSpace(text))
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		parts = append(parts, string(runes[start:i+1]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}

	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n := len(out); n > 0 && runeLen(out[n-1]) < minSentenceLength {
			out[n-1] += " " + p
			continue
		}
		out = append(out, p)
	}
	return out
}
