package sqlite_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage(url, text string) *pagechunk.Page {
	return &pagechunk.Page{
		URL:       url,
		Title:     "For Guests",
		FetchedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Sections:  []pagechunk.Section{{Title: "Parking", Text: text}},
	}
}

func TestPageCache_Put(t *testing.T) {
	t.Parallel()

	t.Run("stores and returns the page", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := sqlite.NewPageCache(setupTestDB(t), nil)

		key, err := c.Put(ctx, samplePage("https://example.com/guests", "Lot 6."))
		require.NoError(t, err)

		got, err := c.Get(ctx, "https://example.com/guests")
		require.NoError(t, err)
		assert.Equal(t, "For Guests", got.Title)
		assert.Equal(t, []pagechunk.Section{{Title: "Parking", Text: "Lot 6."}}, got.Sections)
		assert.Equal(t, pagechunk.PageKey(got.URL, got.ContentSHA1), key)
		assert.True(t, got.FetchedAt.Equal(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("identical content keeps the original entry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := sqlite.NewPageCache(setupTestDB(t), nil)
		_, err := c.Put(ctx, samplePage("https://example.com/guests", "Lot 6."))
		require.NoError(t, err)
		before, err := c.ListMeta(ctx)
		require.NoError(t, err)

		again := samplePage("https://example.com/guests", "Lot 6.")
		again.FetchedAt = again.FetchedAt.Add(24 * time.Hour)
		_, err = c.Put(ctx, again)
		require.NoError(t, err)

		after, err := c.ListMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("new content supersedes the manifest entry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := sqlite.NewPageCache(setupTestDB(t), nil)
		_, err := c.Put(ctx, samplePage("https://example.com/guests", "Lot 6."))
		require.NoError(t, err)

		_, err = c.Put(ctx, samplePage("https://example.com/guests", "Lot 7."))
		require.NoError(t, err)

		meta, err := c.ListMeta(ctx)
		require.NoError(t, err)
		require.Len(t, meta, 1)
		got, err := c.Get(ctx, "https://example.com/guests")
		require.NoError(t, err)
		assert.Equal(t, "Lot 7.", got.Sections[0].Text)
	})

	t.Run("reverted content rewrites the reused record", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := sqlite.NewPageCache(setupTestDB(t), nil)
		url := "https://example.com/guests"
		_, err := c.Put(ctx, samplePage(url, "Lot 6."))
		require.NoError(t, err)
		_, err = c.Put(ctx, samplePage(url, "Lot 7."))
		require.NoError(t, err)

		reverted := samplePage(url, "Lot 6.")
		reverted.Title = "Guests 2025"
		reverted.FetchedAt = reverted.FetchedAt.Add(48 * time.Hour)
		_, err = c.Put(ctx, reverted)
		require.NoError(t, err)

		meta, err := c.Meta(ctx, url)
		require.NoError(t, err)
		got, err := c.Get(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, "Guests 2025", got.Title)
		assert.Equal(t, meta.PageTitle, got.Title)
		assert.True(t, meta.FetchedAt.Equal(got.FetchedAt))
	})

	t.Run("identical content repairs a corrupt record", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)
		c := sqlite.NewPageCache(db, nil)
		url := "https://example.com/guests"
		_, err := c.Put(ctx, samplePage(url, "Lot 6."))
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, "UPDATE pages SET sections = '{not json'")
		require.NoError(t, err)
		_, err = c.Get(ctx, url)
		require.Equal(t, pagechunk.ECACHEIO, pagechunk.ErrorCode(err))

		_, err = c.Put(ctx, samplePage(url, "Lot 6."))
		require.NoError(t, err)

		got, err := c.Get(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, "Lot 6.", got.Sections[0].Text)
	})

	t.Run("rejects a page without url", func(t *testing.T) {
		t.Parallel()

		c := sqlite.NewPageCache(setupTestDB(t), nil)

		_, err := c.Put(context.Background(), &pagechunk.Page{})

		assert.Equal(t, pagechunk.EINVALID, pagechunk.ErrorCode(err))
	})
}

func TestPageCache_Get(t *testing.T) {
	t.Parallel()

	t.Run("unknown url is not found", func(t *testing.T) {
		t.Parallel()

		c := sqlite.NewPageCache(setupTestDB(t), nil)

		_, err := c.Get(context.Background(), "https://example.com/nope")

		assert.Equal(t, pagechunk.ENOTFOUND, pagechunk.ErrorCode(err))
	})

	t.Run("meta reads the manifest row", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := sqlite.NewPageCache(setupTestDB(t), nil)

		_, err := c.Meta(ctx, "https://example.com/guests")
		assert.Equal(t, pagechunk.ENOTFOUND, pagechunk.ErrorCode(err))

		page := samplePage("https://example.com/guests", "Lot 6.")
		key, err := c.Put(ctx, page)
		require.NoError(t, err)

		meta, err := c.Meta(ctx, "https://example.com/guests")
		require.NoError(t, err)
		assert.Equal(t, page.ContentSHA1, meta.ContentSHA1)
		assert.Equal(t, key, meta.Path)
		assert.True(t, meta.FetchedAt.Equal(page.FetchedAt))
	})

	t.Run("missing record is not found", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := setupTestDB(t)
		c := sqlite.NewPageCache(db, nil)
		_, err := c.Put(ctx, samplePage("https://example.com/guests", "Lot 6."))
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, "DELETE FROM pages")
		require.NoError(t, err)

		_, err = c.Get(ctx, "https://example.com/guests")

		assert.Equal(t, pagechunk.ENOTFOUND, pagechunk.ErrorCode(err))
	})
}

func TestPageCache_ListAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	var logs bytes.Buffer
	c := sqlite.NewPageCache(db, slog.New(slog.NewTextHandler(&logs, nil)))

	for _, u := range []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"} {
		_, err := c.Put(ctx, samplePage(u, u))
		require.NoError(t, err)
	}
	_, err := db.ExecContext(ctx, "DELETE FROM pages WHERE url = ?", "https://example.com/b")
	require.NoError(t, err)

	pages, err := c.ListAll(ctx)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://example.com/a", pages[0].URL)
	assert.Equal(t, "https://example.com/c", pages[1].URL)
	assert.Contains(t, logs.String(), "cached page missing")
}

func TestPageCache_Prune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := sqlite.NewPageCache(setupTestDB(t), nil)
	_, err := c.Put(ctx, samplePage("https://example.com/guests", "v1"))
	require.NoError(t, err)
	_, err = c.Put(ctx, samplePage("https://example.com/guests", "v2"))
	require.NoError(t, err)

	n, err := c.Prune(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := c.Get(ctx, "https://example.com/guests")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Sections[0].Text)
}

func TestPageCache_CreatedAt(t *testing.T) {
	t.Parallel()

	c := sqlite.NewPageCache(setupTestDB(t), nil)

	created, err := c.CreatedAt(context.Background())

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created, time.Minute)
}
