package main

import (
	"fmt"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/chunk"
	"github.com/fwojciec/pagechunk/clean"
	"github.com/fwojciec/pagechunk/crawl"
	"github.com/fwojciec/pagechunk/fs"
	"github.com/fwojciec/pagechunk/goquery"
	"github.com/fwojciec/pagechunk/htmltomarkdown"
	"github.com/fwojciec/pagechunk/readability"
	pcslog "github.com/fwojciec/pagechunk/slog"
	"github.com/fwojciec/pagechunk/trafilatura"
)

// progressURLWidth bounds the URL column of progress lines.
const progressURLWidth = 60

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	urls := c.URLs
	if len(urls) == 0 {
		urls = cfg.URLs
	}
	if len(urls) == 0 {
		urls = DefaultURLs
	}

	builder, err := newBuilder(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}
	cleanCfg, err := cfg.CleanerConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	conv := htmltomarkdown.NewConverter()
	registry := goquery.NewRegistry(goquery.DefaultRules(conv)...)
	out := fs.NewChunkFile(cfg.ChunksPath())

	ingester := &crawl.Ingester{
		Fetcher:      deps.Fetcher,
		Selector:     pcslog.NewLoggingSelector(registry, deps.Logger),
		Fallback:     newFallback(cfg.Ingest.Fallback),
		Converter:    conv,
		Cleaner:      clean.New(cleanCfg),
		Cache:        deps.Cache,
		Builder:      builder,
		Chunks:       out,
		TokenCounter: deps.TokenCounter,
		RateLimiter:  crawl.NewDomainLimiter(cfg.Ingest.RPS, 1),
		Concurrency:  cfg.Ingest.Concurrency,
		FetchTimeout: cfg.FetchTimeout(),
		Logger:       deps.Logger,
	}

	progress := func(p pagechunk.IngestProgress) {
		fmt.Fprintln(deps.Stderr, "  "+crawl.FormatProgress(p, progressURLWidth))
	}

	result, err := ingester.Ingest(deps.Ctx, urls, progress)
	if err != nil {
		_ = out.Abort()
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}
	if err := out.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: write %s: %v\n", cfg.ChunksPath(), err)
		return err
	}

	summary := result.String()
	if result.Tokens > 0 {
		summary += " (" + crawl.FormatTokens(result.Tokens) + ")"
	}
	fmt.Fprintln(deps.Stdout, summary)
	return nil
}

// newBuilder returns a chunk record builder for cfg.
func newBuilder(cfg *Config) (*chunk.Builder, error) {
	chunker, err := chunk.New(cfg.ChunkerConfig())
	if err != nil {
		return nil, err
	}
	return &chunk.Builder{
		Chunker:         chunker,
		PipelineVersion: cfg.Chunk.PipelineVersion,
	}, nil
}

// newFallback returns the main-content extractor named by name.
func newFallback(name string) pagechunk.Extractor {
	switch name {
	case FallbackTrafilatura:
		return trafilatura.NewExtractor()
	case FallbackReadability:
		return readability.NewExtractor()
	default:
		return goquery.NewMainExtractor()
	}
}
