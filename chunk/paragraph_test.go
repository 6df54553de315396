package chunk_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/pagechunk/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphChunker_Split(t *testing.T) {
	t.Parallel()

	t.Run("packs paragraphs up to the bound", func(t *testing.T) {
		t.Parallel()

		c := &chunk.ParagraphChunker{MaxSize: 20}

		chunks := c.Split("aaaa\n\nbbbb\n\ncccccccccccccccc")

		assert.Equal(t, []string{"aaaa\n\nbbbb", "cccccccccccccccc"}, chunks)
	})

	t.Run("never exceeds the bound", func(t *testing.T) {
		t.Parallel()

		c := &chunk.ParagraphChunker{MaxSize: 100}
		text := strings.Repeat("x", 250) + "\n\nshort\n\n" + strings.Repeat("y ", 120)

		chunks := c.Split(text)

		require.NotEmpty(t, chunks)
		for _, ch := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(ch), 100)
			assert.NotEmpty(t, strings.TrimSpace(ch))
		}
	})

	t.Run("hard-wraps at fixed offsets", func(t *testing.T) {
		t.Parallel()

		c := &chunk.ParagraphChunker{MaxSize: 10}

		chunks := c.Split(strings.Repeat("z", 25))

		assert.Equal(t, []string{strings.Repeat("z", 10), strings.Repeat("z", 10), strings.Repeat("z", 5)}, chunks)
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()

		c := &chunk.ParagraphChunker{MaxSize: 4}

		chunks := c.Split("éééé")

		assert.Equal(t, []string{"éééé"}, chunks)
	})

	t.Run("returns nothing for empty input", func(t *testing.T) {
		t.Parallel()

		c := &chunk.ParagraphChunker{MaxSize: 10}

		assert.Empty(t, c.Split(""))
	})
}
