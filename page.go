package pagechunk

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// Page is a cleaned, content-addressed snapshot of a fetched URL.
// A re-fetch with different content produces a new record that supersedes
// this one.
type Page struct {
	URL         string    `json:"url"`
	Title       string    `json:"page_title"`
	FetchedAt   time.Time `json:"fetched_at"`
	Sections    []Section `json:"sections"`
	ContentSHA1 string    `json:"content_sha1"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page url required")
	}
	return nil
}

// ContentHash returns the hex SHA-1 of the canonical, order-sensitive
// serialization of sections. Identical sections in the same order always
// produce the same hash.
func ContentHash(sections []Section) string {
	h := sha1.New()
	for _, s := range sections {
		h.Write([]byte(s.Title))
		h.Write([]byte{0x1f})
		h.Write([]byte(s.Text))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PageKey returns the storage key for a page record. Records for the same
// URL share a prefix; the content hash makes each record content-addressed.
func PageKey(url, contentSHA1 string) string {
	return sha1Hex(url) + "/" + contentSHA1
}

// ManifestEntry is the manifest's pointer to the latest record of a URL.
type ManifestEntry struct {
	URL         string    `json:"url"`
	PageTitle   string    `json:"page_title"`
	FetchedAt   time.Time `json:"fetched_at"`
	ContentSHA1 string    `json:"content_sha1"`
	Path        string    `json:"path"`
}

// PageCache persists cleaned pages keyed by content hash, plus a manifest
// mapping each URL to its latest record.
type PageCache interface {
	// Put computes the page's content hash, stores the record and points the
	// manifest entry for its URL at it. Putting identical content again is a
	// no-op while the stored record is readable; otherwise the record is
	// rewritten. Returns the storage key.
	Put(ctx context.Context, page *Page) (string, error)

	// Get returns the latest record for url.
	// Returns ENOTFOUND if the URL is unknown or its record is missing.
	Get(ctx context.Context, url string) (*Page, error)

	// Meta returns the manifest entry for url without loading its record.
	// Returns ENOTFOUND if the URL is unknown.
	Meta(ctx context.Context, url string) (*ManifestEntry, error)

	// ListAll returns every page referenced by the manifest, sorted by URL.
	// Entries whose record is missing are skipped.
	ListAll(ctx context.Context) ([]*Page, error)

	// ListMeta returns the manifest entries sorted by URL.
	ListMeta(ctx context.Context) ([]*ManifestEntry, error)

	// Prune deletes records no longer referenced by the manifest and
	// returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// IngestProgress reports progress during ingestion.
type IngestProgress struct {
	URL       string
	Completed int
	Total     int
	Unchanged bool
	Error     error
}

// IngestProgressFunc is called as each URL finishes processing.
type IngestProgressFunc func(IngestProgress)
