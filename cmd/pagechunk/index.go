package main

import (
	"fmt"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/index"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	builder, err := newBuilder(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	indexer := &index.Indexer{
		Cache:     deps.Cache,
		State:     deps.State,
		Builder:   builder,
		Upserter:  deps.Upserter,
		BatchSize: cfg.Index.UpsertBatch,
	}

	stats, err := indexer.Run(deps.Ctx, index.Options{ReindexAll: c.ReindexAll})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	if stats.Pages == 0 {
		fmt.Fprintln(deps.Stdout, "Nothing to index (all up to date).")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "indexed %d pages (%d chunks) into collection %q\n",
		stats.Pages, stats.Chunks, cfg.Index.Collection)
	return nil
}
