package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/pagechunk"
)

// Ensure PageCache implements pagechunk.PageCache at compile time.
var _ pagechunk.PageCache = (*PageCache)(nil)

const (
	manifestFile = "manifest.json"
	pagesDir     = "pages"
)

type manifest struct {
	CreatedAt time.Time                  `json:"created_at"`
	Items     []*pagechunk.ManifestEntry `json:"items"`
}

// PageCache implements pagechunk.PageCache on the local filesystem.
//
// Layout:
//
//	<dir>/manifest.json
//	<dir>/pages/<sha1(url)>/<content_sha1>.json
//
// Records and the manifest are written atomically; the manifest is
// guarded by a mutex so concurrent Puts cannot lose entries.
type PageCache struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	createdAt time.Time
	entries   map[string]*pagechunk.ManifestEntry
}

// Option configures a PageCache.
type Option func(*PageCache)

// WithLogger sets the logger used to report skipped records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *PageCache) {
		c.logger = logger
	}
}

// WithClock sets the clock used to stamp pages and the manifest.
func WithClock(now func() time.Time) Option {
	return func(c *PageCache) {
		c.now = now
	}
}

// NewPageCache returns a cache rooted at dir. Call Open before use.
func NewPageCache(dir string, opts ...Option) *PageCache {
	c := &PageCache{
		dir:     dir,
		logger:  slog.New(slog.DiscardHandler),
		now:     func() time.Time { return time.Now().UTC() },
		entries: make(map[string]*pagechunk.ManifestEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates the cache layout if needed and loads the manifest.
// A corrupt manifest is an ECACHEIO error.
func (c *PageCache) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(c.dir, pagesDir), 0755); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "create cache directory: %v", err)
	}

	data, err := os.ReadFile(c.manifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		c.createdAt = c.now()
		if err := c.saveManifest(); err != nil {
			return pagechunk.Errorf(pagechunk.ECACHEIO, "write manifest: %v", err)
		}
		return nil
	} else if err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "read manifest: %v", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "corrupt manifest %s: %v", c.manifestPath(), err)
	}
	c.createdAt = m.CreatedAt
	for _, e := range m.Items {
		if e == nil || e.URL == "" {
			continue
		}
		c.entries[e.URL] = e
	}
	return nil
}

// Dir returns the cache root.
func (c *PageCache) Dir() string {
	return c.dir
}

// Put stores page and points its manifest entry at the new record. It sets
// page.ContentSHA1. Storing identical content again writes nothing and
// keeps the original entry, including its fetch time, unless the record
// it points at is unreadable. Any other Put rewrites the record, so a
// record reused after the content changed back matches the manifest.
func (c *PageCache) Put(ctx context.Context, page *pagechunk.Page) (string, error) {
	if err := page.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page.ContentSHA1 = pagechunk.ContentHash(page.Sections)
	if page.FetchedAt.IsZero() {
		page.FetchedAt = c.now()
	}
	key := pagechunk.PageKey(page.URL, page.ContentSHA1)
	rel := pagesDir + "/" + key + ".json"

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[page.URL]; ok && prev.ContentSHA1 == page.ContentSHA1 {
		if _, err := c.readPage(prev); err == nil {
			return key, nil
		}
		c.logger.Warn("rewriting unreadable page record", "url", page.URL, "path", prev.Path)
	}

	if err := writeJSONAtomic(c.abs(rel), page); err != nil {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "write page %s: %v", page.URL, err)
	}

	prev := c.entries[page.URL]
	c.entries[page.URL] = &pagechunk.ManifestEntry{
		URL:         page.URL,
		PageTitle:   page.Title,
		FetchedAt:   page.FetchedAt,
		ContentSHA1: page.ContentSHA1,
		Path:        rel,
	}
	if err := c.saveManifest(); err != nil {
		if prev != nil {
			c.entries[page.URL] = prev
		} else {
			delete(c.entries, page.URL)
		}
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "write manifest: %v", err)
	}
	return key, nil
}

// Get returns the latest record for url.
func (c *PageCache) Get(ctx context.Context, url string) (*pagechunk.Page, error) {
	c.mu.Lock()
	entry, ok := c.entries[url]
	c.mu.Unlock()
	if !ok {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page %q not in cache", url)
	}
	return c.readPage(entry)
}

// Meta returns a copy of the manifest entry for url.
func (c *PageCache) Meta(ctx context.Context, url string) (*pagechunk.ManifestEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[url]
	if !ok {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page %q not in cache", url)
	}
	cp := *entry
	return &cp, nil
}

// ListAll returns every page the manifest references, sorted by URL.
// Entries whose record has gone missing are logged and skipped.
func (c *PageCache) ListAll(ctx context.Context) ([]*pagechunk.Page, error) {
	entries, err := c.ListMeta(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]*pagechunk.Page, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := c.readPage(e)
		if pagechunk.ErrorCode(err) == pagechunk.ENOTFOUND {
			c.logger.Warn("cached page missing", "url", e.URL, "path", e.Path)
			continue
		} else if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// ListMeta returns copies of the manifest entries sorted by URL.
func (c *PageCache) ListMeta(ctx context.Context) ([]*pagechunk.ManifestEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedEntries(), nil
}

// Prune removes page records the manifest no longer references, along
// with stray temp files, and returns the number of files removed.
func (c *PageCache) Prune(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := make(map[string]struct{}, len(c.entries))
	for _, e := range c.entries {
		live[filepath.Clean(c.abs(e.Path))] = struct{}{}
	}

	var removed int
	root := filepath.Join(c.dir, pagesDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := live[filepath.Clean(path)]; ok {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, pagechunk.Errorf(pagechunk.ECACHEIO, "prune: %v", err)
	}

	// Drop URL directories left empty.
	dirs, err := os.ReadDir(root)
	if err != nil {
		return removed, pagechunk.Errorf(pagechunk.ECACHEIO, "prune: %v", err)
	}
	for _, d := range dirs {
		if d.IsDir() {
			_ = os.Remove(filepath.Join(root, d.Name())) // fails unless empty
		}
	}
	return removed, nil
}

func (c *PageCache) readPage(entry *pagechunk.ManifestEntry) (*pagechunk.Page, error) {
	data, err := os.ReadFile(c.abs(entry.Path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page record for %q missing", entry.URL)
	} else if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "read page %s: %v", entry.URL, err)
	}

	var p pagechunk.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "corrupt page record %s: %v", entry.Path, err)
	}
	return &p, nil
}

// saveManifest must be called with mu held.
func (c *PageCache) saveManifest() error {
	return writeJSONAtomic(c.manifestPath(), manifest{
		CreatedAt: c.createdAt,
		Items:     c.sortedEntries(),
	})
}

func (c *PageCache) sortedEntries() []*pagechunk.ManifestEntry {
	out := make([]*pagechunk.ManifestEntry, 0, len(c.entries))
	for _, e := range c.entries {
		cp := *e
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *pagechunk.ManifestEntry) int {
		return strings.Compare(a.URL, b.URL)
	})
	return out
}

func (c *PageCache) manifestPath() string {
	return filepath.Join(c.dir, manifestFile)
}

func (c *PageCache) abs(rel string) string {
	return filepath.Join(c.dir, filepath.FromSlash(rel))
}
