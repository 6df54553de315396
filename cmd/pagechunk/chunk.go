package main

import (
	"fmt"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/fs"
)

// Run executes the chunk command.
func (c *ChunkCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	builder, err := newBuilder(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	pages, err := deps.Cache.ListAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	chunks := builder.BuildAll(pages)
	out := fs.NewChunkFile(cfg.ChunksPath())
	if err := out.WriteChunks(deps.Ctx, chunks); err != nil {
		_ = out.Abort()
		fmt.Fprintf(deps.Stderr, "error: write %s: %v\n", cfg.ChunksPath(), err)
		return err
	}
	if err := out.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: write %s: %v\n", cfg.ChunksPath(), err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "wrote %d chunks from %d pages to %s\n", len(chunks), len(pages), cfg.ChunksPath())
	return nil
}
