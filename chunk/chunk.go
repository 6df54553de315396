// Package chunk splits cleaned section text into bounded pieces and turns
// cached pages into chunk records.
package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/pagechunk"
)

// Chunking strategies.
const (
	StrategySentence  = "sentence"
	StrategyParagraph = "paragraph"
)

// Defaults for Config.
const (
	DefaultMaxSize  = 1200
	DefaultOverlap  = 150
	DefaultStrategy = StrategySentence
)

// Config selects and sizes a chunker. Sizes count characters.
type Config struct {
	Strategy string
	MaxSize  int
	Overlap  int
}

// DefaultConfig returns the stock chunking configuration.
func DefaultConfig() Config {
	return Config{
		Strategy: DefaultStrategy,
		MaxSize:  DefaultMaxSize,
		Overlap:  DefaultOverlap,
	}
}

// Validate returns EINVALID when the sizes cannot produce bounded chunks.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return pagechunk.Errorf(pagechunk.EINVALID, "chunk max size must be positive, got %d", c.MaxSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxSize {
		return pagechunk.Errorf(pagechunk.EINVALID, "chunk overlap must be in [0, %d), got %d", c.MaxSize, c.Overlap)
	}
	switch c.Strategy {
	case StrategySentence, StrategyParagraph:
	default:
		return pagechunk.Errorf(pagechunk.EINVALID, "unknown chunk strategy %q", c.Strategy)
	}
	return nil
}

// New returns the chunker described by cfg.
func New(cfg Config) (pagechunk.Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Strategy == StrategyParagraph {
		return &ParagraphChunker{MaxSize: cfg.MaxSize}, nil
	}
	return &SentenceChunker{MaxSize: cfg.MaxSize, Overlap: cfg.Overlap}, nil
}

var (
	blanksRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses runs of spaces and tabs, limits blank lines to one
// and trims the result.
func Normalize(s string) string {
	s = blanksRe.ReplaceAllString(s, " ")
	s = newlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TrailingOverlap returns at most the last n characters of s, snapped
// forward to a word boundary so that no partial word leads the result.
func TrailingOverlap(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if n >= len(runes) {
		return strings.Join(strings.Fields(s), " ")
	}
	cut := len(runes) - n
	tail := runes[cut:]
	if !isSpace(runes[cut-1]) {
		i := 0
		for i < len(tail) && !isSpace(tail[i]) {
			i++
		}
		tail = tail[i:]
	}
	return strings.Join(strings.Fields(string(tail)), " ")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
