package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/pagechunk"
)

// Compile-time interface verification.
var _ pagechunk.PageCache = (*PageCache)(nil)

// PageCache implements pagechunk.PageCache using SQLite. Records live in
// the pages table keyed by pagechunk.PageKey; the manifest table maps each
// URL to its latest record. Every Put runs in one transaction.
type PageCache struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewPageCache creates a new PageCache. A nil logger discards output.
func NewPageCache(db *DB, logger *slog.Logger) *PageCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PageCache{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Put stores page and points its manifest row at the new record. It sets
// page.ContentSHA1. Identical content leaves both tables untouched unless
// the stored record is unreadable. Any other Put rewrites the record, so a
// record reused after the content changed back matches the manifest.
func (c *PageCache) Put(ctx context.Context, page *pagechunk.Page) (string, error) {
	if err := page.Validate(); err != nil {
		return "", err
	}

	page.ContentSHA1 = pagechunk.ContentHash(page.Sections)
	if page.FetchedAt.IsZero() {
		page.FetchedAt = c.now()
	}
	key := pagechunk.PageKey(page.URL, page.ContentSHA1)

	sections, err := json.Marshal(page.Sections)
	if err != nil {
		return "", err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "begin: %v", err)
	}
	defer tx.Rollback()

	var current, stored string
	err = tx.QueryRowContext(ctx, `
		SELECT m.content_sha1, p.sections FROM manifest m
		JOIN pages p ON p.key = m.page_key
		WHERE m.url = ?
	`, page.URL).Scan(&current, &stored)
	if err == nil && current == page.ContentSHA1 {
		if json.Valid([]byte(stored)) {
			return key, nil
		}
		c.logger.Warn("rewriting unreadable page record", "url", page.URL, "key", key)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "lookup %s: %v", page.URL, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pages (key, url, content_sha1, page_title, fetched_at, sections)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			page_title = excluded.page_title,
			fetched_at = excluded.fetched_at,
			sections = excluded.sections
	`, key, page.URL, page.ContentSHA1, page.Title, formatTime(page.FetchedAt), string(sections)); err != nil {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "write page %s: %v", page.URL, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO manifest (url, page_key, page_title, fetched_at, content_sha1)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			page_key = excluded.page_key,
			page_title = excluded.page_title,
			fetched_at = excluded.fetched_at,
			content_sha1 = excluded.content_sha1
	`, page.URL, key, page.Title, formatTime(page.FetchedAt), page.ContentSHA1); err != nil {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "write manifest %s: %v", page.URL, err)
	}

	if err := tx.Commit(); err != nil {
		return "", pagechunk.Errorf(pagechunk.ECACHEIO, "commit: %v", err)
	}
	return key, nil
}

// Get returns the latest record for url.
func (c *PageCache) Get(ctx context.Context, url string) (*pagechunk.Page, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT m.url, m.page_key, p.page_title, p.fetched_at, p.content_sha1, p.sections
		FROM manifest m
		LEFT JOIN pages p ON p.key = m.page_key
		WHERE m.url = ?
	`, url)

	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page %q not in cache", url)
	}
	return page, err
}

// Meta returns the manifest row for url. Path holds the page key.
func (c *PageCache) Meta(ctx context.Context, url string) (*pagechunk.ManifestEntry, error) {
	var e pagechunk.ManifestEntry
	var fetchedAt string
	err := c.db.QueryRowContext(ctx, `
		SELECT url, page_key, page_title, fetched_at, content_sha1
		FROM manifest
		WHERE url = ?
	`, url).Scan(&e.URL, &e.Path, &e.PageTitle, &fetchedAt, &e.ContentSHA1)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page %q not in cache", url)
	} else if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "lookup %s: %v", url, err)
	}
	if e.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListAll returns every page the manifest references, sorted by URL.
// Manifest rows whose record is missing are logged and skipped.
func (c *PageCache) ListAll(ctx context.Context) ([]*pagechunk.Page, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT m.url, m.page_key, p.page_title, p.fetched_at, p.content_sha1, p.sections
		FROM manifest m
		LEFT JOIN pages p ON p.key = m.page_key
		ORDER BY m.url ASC
	`)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "list pages: %v", err)
	}
	defer rows.Close()

	var pages []*pagechunk.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if pagechunk.ErrorCode(err) == pagechunk.ENOTFOUND {
			c.logger.Warn("cached page missing", "err", pagechunk.ErrorMessage(err))
			continue
		} else if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "list pages: %v", err)
	}
	return pages, nil
}

// ListMeta returns the manifest rows sorted by URL. Path holds the page key.
func (c *PageCache) ListMeta(ctx context.Context) ([]*pagechunk.ManifestEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT url, page_key, page_title, fetched_at, content_sha1
		FROM manifest
		ORDER BY url ASC
	`)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "list manifest: %v", err)
	}
	defer rows.Close()

	var entries []*pagechunk.ManifestEntry
	for rows.Next() {
		var e pagechunk.ManifestEntry
		var fetchedAt string
		if err := rows.Scan(&e.URL, &e.Path, &e.PageTitle, &fetchedAt, &e.ContentSHA1); err != nil {
			return nil, err
		}
		if e.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Prune deletes records no longer referenced by the manifest.
func (c *PageCache) Prune(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM pages WHERE key NOT IN (SELECT page_key FROM manifest)
	`)
	if err != nil {
		return 0, pagechunk.Errorf(pagechunk.ECACHEIO, "prune: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CreatedAt returns when the cache was first created.
func (c *PageCache) CreatedAt(ctx context.Context) (time.Time, error) {
	var v string
	if err := c.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'created_at'`).Scan(&v); err != nil {
		return time.Time{}, err
	}
	return parseRFC3339(v, "created_at")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*pagechunk.Page, error) {
	var (
		url, key                                 string
		title, fetchedAt, contentSHA1, sectionsJ sql.NullString
	)
	if err := row.Scan(&url, &key, &title, &fetchedAt, &contentSHA1, &sectionsJ); err != nil {
		return nil, err
	}
	if !sectionsJ.Valid {
		return nil, pagechunk.Errorf(pagechunk.ENOTFOUND, "page record for %q missing", url)
	}

	page := &pagechunk.Page{
		URL:         url,
		Title:       title.String,
		ContentSHA1: contentSHA1.String,
	}
	var err error
	if page.FetchedAt, err = parseRFC3339(fetchedAt.String, "fetched_at"); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sectionsJ.String), &page.Sections); err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "corrupt page record %s: %v", key, err)
	}
	return page, nil
}
