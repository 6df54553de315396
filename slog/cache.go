package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.PageCache = (*LoggingPageCache)(nil)

// LoggingPageCache wraps a PageCache with debug logging. Writes and prunes
// log at info level, reads at debug.
type LoggingPageCache struct {
	next   pagechunk.PageCache
	logger *slog.Logger
}

// NewLoggingPageCache creates a new LoggingPageCache.
func NewLoggingPageCache(next pagechunk.PageCache, logger *slog.Logger) *LoggingPageCache {
	return &LoggingPageCache{next: next, logger: logger}
}

// Put delegates to the wrapped cache and logs the stored key.
func (c *LoggingPageCache) Put(ctx context.Context, page *pagechunk.Page) (key string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache put",
			"url", page.URL,
			"sections", len(page.Sections),
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Put(ctx, page)
}

// Get delegates to the wrapped cache.
func (c *LoggingPageCache) Get(ctx context.Context, url string) (page *pagechunk.Page, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache get",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Get(ctx, url)
}

// Meta delegates to the wrapped cache.
func (c *LoggingPageCache) Meta(ctx context.Context, url string) (entry *pagechunk.ManifestEntry, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache meta",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Meta(ctx, url)
}

// ListAll delegates to the wrapped cache.
func (c *LoggingPageCache) ListAll(ctx context.Context) (pages []*pagechunk.Page, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache list",
			"count", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.ListAll(ctx)
}

// ListMeta delegates to the wrapped cache.
func (c *LoggingPageCache) ListMeta(ctx context.Context) (entries []*pagechunk.ManifestEntry, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache list meta",
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.ListMeta(ctx)
}

// Prune delegates to the wrapped cache.
func (c *LoggingPageCache) Prune(ctx context.Context) (removed int, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache prune",
			"removed", removed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Prune(ctx)
}
