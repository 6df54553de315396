package pagechunk_test

import (
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("splits at headings", func(t *testing.T) {
		t.Parallel()

		markdown := "# Parking\n\nLot 6 opens at 8am.\n\n## Shuttles\n\nEvery ten minutes."

		sections := pagechunk.SplitMarkdown(markdown, "Page")

		require.Len(t, sections, 2)
		assert.Equal(t, pagechunk.Section{Title: "Parking", Text: "Lot 6 opens at 8am."}, sections[0])
		assert.Equal(t, pagechunk.Section{Title: "Shuttles", Text: "Every ten minutes."}, sections[1])
	})

	t.Run("titles leading content with fallback", func(t *testing.T) {
		t.Parallel()

		markdown := "Welcome graduates.\n\n# Tickets\n\nNo tickets required."

		sections := pagechunk.SplitMarkdown(markdown, "For Graduates")

		require.Len(t, sections, 2)
		assert.Equal(t, "For Graduates", sections[0].Title)
		assert.Equal(t, "Welcome graduates.", sections[0].Text)
		assert.Equal(t, "Tickets", sections[1].Title)
	})

	t.Run("skips headings without body", func(t *testing.T) {
		t.Parallel()

		sections := pagechunk.SplitMarkdown("# Empty\n## Also Empty\n\nbody", "x")

		require.Len(t, sections, 1)
		assert.Equal(t, "Also Empty", sections[0].Title)
	})

	t.Run("ignores hash lines in code fences", func(t *testing.T) {
		t.Parallel()

		markdown := "# Real\n\n```bash\n# comment\necho hi\n```\n"

		sections := pagechunk.SplitMarkdown(markdown, "x")

		require.Len(t, sections, 1)
		assert.Equal(t, "Real", sections[0].Title)
		assert.Contains(t, sections[0].Text, "# comment")
	})

	t.Run("returns nil for blank input", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, pagechunk.SplitMarkdown("  \n ", "x"))
	})
}

func TestSectionSHA1(t *testing.T) {
	t.Parallel()

	// sha1("abc")
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", pagechunk.SectionSHA1("abc"))
}
