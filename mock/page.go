package mock

import (
	"context"

	"github.com/fwojciec/pagechunk"
)

// Compile-time interface verification.
var (
	_ pagechunk.PageCache       = (*PageCache)(nil)
	_ pagechunk.IndexStateStore = (*IndexStateStore)(nil)
)

// PageCache is a mock implementation of pagechunk.PageCache.
type PageCache struct {
	PutFn      func(ctx context.Context, page *pagechunk.Page) (string, error)
	GetFn      func(ctx context.Context, url string) (*pagechunk.Page, error)
	MetaFn     func(ctx context.Context, url string) (*pagechunk.ManifestEntry, error)
	ListAllFn  func(ctx context.Context) ([]*pagechunk.Page, error)
	ListMetaFn func(ctx context.Context) ([]*pagechunk.ManifestEntry, error)
	PruneFn    func(ctx context.Context) (int, error)
}

func (c *PageCache) Put(ctx context.Context, page *pagechunk.Page) (string, error) {
	return c.PutFn(ctx, page)
}

func (c *PageCache) Get(ctx context.Context, url string) (*pagechunk.Page, error) {
	return c.GetFn(ctx, url)
}

func (c *PageCache) Meta(ctx context.Context, url string) (*pagechunk.ManifestEntry, error) {
	return c.MetaFn(ctx, url)
}

func (c *PageCache) ListAll(ctx context.Context) ([]*pagechunk.Page, error) {
	return c.ListAllFn(ctx)
}

func (c *PageCache) ListMeta(ctx context.Context) ([]*pagechunk.ManifestEntry, error) {
	return c.ListMetaFn(ctx)
}

func (c *PageCache) Prune(ctx context.Context) (int, error) {
	return c.PruneFn(ctx)
}

// IndexStateStore is a mock implementation of pagechunk.IndexStateStore.
type IndexStateStore struct {
	LoadIndexStateFn func(ctx context.Context) (pagechunk.IndexState, error)
	SaveIndexStateFn func(ctx context.Context, state pagechunk.IndexState) error
}

func (s *IndexStateStore) LoadIndexState(ctx context.Context) (pagechunk.IndexState, error) {
	return s.LoadIndexStateFn(ctx)
}

func (s *IndexStateStore) SaveIndexState(ctx context.Context, state pagechunk.IndexState) error {
	return s.SaveIndexStateFn(ctx, state)
}
