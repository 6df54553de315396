package clean_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/clean"
	"github.com/stretchr/testify/assert"
)

func TestCleaner_Clean(t *testing.T) {
	t.Parallel()

	t.Run("drops exact duplicates keeping the first", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: "FAQ", Text: "Call us."},
			{Title: "Parking", Text: "Lot 6."},
			{Title: "FAQ", Text: "Call us."},
		})

		assert.Equal(t, []pagechunk.Section{
			{Title: "FAQ", Text: "Call us."},
			{Title: "Parking", Text: "Lot 6."},
		}, got)
	})

	t.Run("treats whitespace variants as duplicates", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: " FAQ ", Text: "Call us.\n"},
			{Title: "FAQ", Text: "Call us."},
		})

		assert.Len(t, got, 1)
	})

	t.Run("always drops deny-listed titles", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: "Follow Us", Text: strings.Repeat("long social text ", 50)},
			{Title: "Tickets", Text: "None needed."},
		})

		assert.Equal(t, []pagechunk.Section{{Title: "Tickets", Text: "None needed."}}, got)
	})

	t.Run("drops short sections matching the noise pattern", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: "Footer", Text: "© Copyright 2024 Queens College"},
		})

		assert.Empty(t, got)
	})

	t.Run("keeps long sections that mention copyright", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())
		text := "Photography policy. " + strings.Repeat("x", 470) + " © Copyright applies."

		got := c.Clean([]pagechunk.Section{{Title: "Photos", Text: text}})

		assert.Len(t, got, 1)
		assert.Equal(t, text, got[0].Text)
	})

	t.Run("noise length threshold is 160 characters", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())
		prefix := "Follow Us "
		short := prefix + strings.Repeat("a", 159-len(prefix))
		exact := prefix + strings.Repeat("b", 160-len(prefix))
		longer := prefix + strings.Repeat("c", 180-len(prefix))

		got := c.Clean([]pagechunk.Section{
			{Title: "Connect", Text: short},
			{Title: "Social", Text: exact},
			{Title: "More", Text: longer},
		})

		assert.Equal(t, []pagechunk.Section{
			{Title: "Social", Text: exact},
			{Title: "More", Text: longer},
		}, got)
	})

	t.Run("drops sections with empty text", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{{Title: "Empty", Text: "  \n "}})

		assert.Empty(t, got)
	})

	t.Run("merges adjacent sections sharing a title", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: "A", Text: "x"},
			{Title: "A", Text: "y"},
			{Title: "B", Text: "z"},
		})

		assert.Equal(t, []pagechunk.Section{
			{Title: "A", Text: "x\n\ny"},
			{Title: "B", Text: "z"},
		}, got)
	})

	t.Run("does not merge non-adjacent sections", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		got := c.Clean([]pagechunk.Section{
			{Title: "A", Text: "x"},
			{Title: "B", Text: "z"},
			{Title: "A", Text: "y"},
		})

		assert.Len(t, got, 3)
	})

	t.Run("honours a custom config", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.Config{
			DenyTitles:   []string{"Sidebar"},
			NoisePattern: regexp.MustCompile(`(?i)subscribe`),
			MinLength:    10,
		})

		got := c.Clean([]pagechunk.Section{
			{Title: "Sidebar", Text: "links"},
			{Title: "News", Text: "Subscribe"},
			{Title: "News", Text: "Subscribe to our newsletter today"},
			{Title: "Follow Us", Text: "kept here"},
		})

		assert.Equal(t, []pagechunk.Section{
			{Title: "News", Text: "Subscribe to our newsletter today"},
			{Title: "Follow Us", Text: "kept here"},
		}, got)
	})

	t.Run("returns empty for nil input", func(t *testing.T) {
		t.Parallel()

		c := clean.New(clean.DefaultConfig())

		assert.Empty(t, c.Clean(nil))
	})
}
