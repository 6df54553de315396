package pagechunk

import "context"

// IndexState maps a URL to the content hash that was last indexed
// successfully downstream.
type IndexState map[string]string

// IndexStateStore loads and saves index state.
type IndexStateStore interface {
	// LoadIndexState returns the saved state. A missing state yields an
	// empty map so that every page is treated as needing indexing.
	LoadIndexState(ctx context.Context) (IndexState, error)

	// SaveIndexState atomically replaces the saved state.
	SaveIndexState(ctx context.Context, state IndexState) error
}
