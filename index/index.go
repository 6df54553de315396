// Package index reconciles the page cache against what has already been
// indexed downstream and drives the embedding upsert for pages that
// changed.
package index

import (
	"context"
	"fmt"
	"iter"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/chunk"
)

// DefaultBatchSize is the number of chunk records sent per upsert.
const DefaultBatchSize = 64

// PagesNeedingIndex yields every cached page whose current content hash
// differs from the one recorded in state. Manifest entries without a URL
// or hash are skipped, as are entries whose record has gone missing.
// Errors other than a missing record are yielded and end the sequence.
func PagesNeedingIndex(ctx context.Context, cache pagechunk.PageCache, state pagechunk.IndexState) iter.Seq2[*pagechunk.Page, error] {
	return func(yield func(*pagechunk.Page, error) bool) {
		entries, err := cache.ListMeta(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, e := range entries {
			if e.URL == "" || e.ContentSHA1 == "" {
				continue
			}
			if state[e.URL] == e.ContentSHA1 {
				continue
			}
			page, err := cache.Get(ctx, e.URL)
			if pagechunk.ErrorCode(err) == pagechunk.ENOTFOUND {
				continue
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

// Options configures a single indexing run.
type Options struct {
	// ReindexAll ignores the saved state and indexes every cached page.
	ReindexAll bool
}

// Stats summarizes an indexing run.
type Stats struct {
	Pages  int
	Chunks int
}

// Indexer pushes changed pages downstream and records what was indexed.
type Indexer struct {
	Cache     pagechunk.PageCache
	State     pagechunk.IndexStateStore
	Builder   *chunk.Builder
	Upserter  pagechunk.Upserter
	BatchSize int
}

// Run indexes pending pages. State is advanced and saved only after every
// batch was upserted; any failure leaves the saved state untouched.
func (x *Indexer) Run(ctx context.Context, opts Options) (*Stats, error) {
	state := pagechunk.IndexState{}
	if !opts.ReindexAll {
		loaded, err := x.State.LoadIndexState(ctx)
		if err != nil {
			return nil, fmt.Errorf("load index state: %w", err)
		}
		if loaded != nil {
			state = loaded
		}
	}

	var pages []*pagechunk.Page
	for page, err := range PagesNeedingIndex(ctx, x.Cache, state) {
		if err != nil {
			return nil, fmt.Errorf("list pending pages: %w", err)
		}
		pages = append(pages, page)
	}
	stats := &Stats{Pages: len(pages)}
	if len(pages) == 0 {
		return stats, nil
	}

	chunks := x.Builder.BuildAll(pages)
	stats.Chunks = len(chunks)

	size := x.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))
		if err := x.Upserter.Upsert(ctx, chunks[start:end]); err != nil {
			return nil, fmt.Errorf("upsert chunks %d-%d: %w", start, end, err)
		}
	}

	for _, p := range pages {
		state[p.URL] = p.ContentSHA1
	}
	if err := x.State.SaveIndexState(ctx, state); err != nil {
		return nil, fmt.Errorf("save index state: %w", err)
	}
	return stats, nil
}
