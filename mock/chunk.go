package mock

import (
	"context"

	"github.com/fwojciec/pagechunk"
)

// Compile-time interface verification.
var (
	_ pagechunk.Chunker     = (*Chunker)(nil)
	_ pagechunk.ChunkWriter = (*ChunkWriter)(nil)
	_ pagechunk.Embedder    = (*Embedder)(nil)
	_ pagechunk.Upserter    = (*Upserter)(nil)
)

// Chunker is a mock implementation of pagechunk.Chunker.
type Chunker struct {
	SplitFn func(text string) []string
}

func (c *Chunker) Split(text string) []string {
	return c.SplitFn(text)
}

// ChunkWriter is a mock implementation of pagechunk.ChunkWriter.
type ChunkWriter struct {
	WriteChunksFn func(ctx context.Context, chunks []*pagechunk.Chunk) error
	CommitFn      func() error
	AbortFn       func() error
}

func (w *ChunkWriter) WriteChunks(ctx context.Context, chunks []*pagechunk.Chunk) error {
	return w.WriteChunksFn(ctx, chunks)
}

func (w *ChunkWriter) Commit() error {
	return w.CommitFn()
}

func (w *ChunkWriter) Abort() error {
	return w.AbortFn()
}

// Embedder is a mock implementation of pagechunk.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}

// Upserter is a mock implementation of pagechunk.Upserter.
type Upserter struct {
	UpsertFn func(ctx context.Context, chunks []*pagechunk.Chunk) error
}

func (u *Upserter) Upsert(ctx context.Context, chunks []*pagechunk.Chunk) error {
	return u.UpsertFn(ctx, chunks)
}
