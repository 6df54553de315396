package chunk_test

import (
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("returns sentence chunker by default config", func(t *testing.T) {
		t.Parallel()

		c, err := chunk.New(chunk.DefaultConfig())

		require.NoError(t, err)
		assert.IsType(t, &chunk.SentenceChunker{}, c)
	})

	t.Run("returns paragraph chunker", func(t *testing.T) {
		t.Parallel()

		c, err := chunk.New(chunk.Config{Strategy: chunk.StrategyParagraph, MaxSize: 500})

		require.NoError(t, err)
		assert.IsType(t, &chunk.ParagraphChunker{}, c)
	})

	tests := []struct {
		name string
		cfg  chunk.Config
	}{
		{"zero max size", chunk.Config{Strategy: chunk.StrategySentence, MaxSize: 0}},
		{"negative overlap", chunk.Config{Strategy: chunk.StrategySentence, MaxSize: 100, Overlap: -1}},
		{"overlap not below max", chunk.Config{Strategy: chunk.StrategySentence, MaxSize: 100, Overlap: 100}},
		{"unknown strategy", chunk.Config{Strategy: "tokens", MaxSize: 100}},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := chunk.New(tt.cfg)

			assert.Equal(t, pagechunk.EINVALID, pagechunk.ErrorCode(err))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := chunk.Normalize("  a \t b\n\n\n\nc  ")

	assert.Equal(t, "a b\n\nc", got)
}

func TestTrailingOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"drops partial leading word", "the quick brown fox", 7, "fox"},
		{"keeps word starting at cut", "the quick brown fox", 9, "brown fox"},
		{"whole string when n is large", "the  quick", 50, "the quick"},
		{"empty for zero", "the quick", 0, ""},
		{"empty when only a partial word fits", "unbreakable", 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, chunk.TrailingOverlap(tt.s, tt.n))
		})
	}
}
