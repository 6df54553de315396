// Package crawl provides ingestion orchestration.
// It coordinates fetching, section extraction, cleaning, caching and
// chunking of a fixed list of pages.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/chunk"
	"github.com/fwojciec/pagechunk/clean"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 4

// Ingester fetches pages and turns them into cached, cleaned sections and
// chunk records.
type Ingester struct {
	Fetcher  pagechunk.Fetcher
	Selector pagechunk.ExtractorSelector

	// Fallback and Converter handle pages where no section extractor
	// found anything. Both are optional.
	Fallback  pagechunk.Extractor
	Converter pagechunk.Converter

	Cleaner *clean.Cleaner
	Cache   pagechunk.PageCache
	Builder *chunk.Builder

	// Chunks receives chunk records for every successfully ingested page.
	// The caller owns Commit and Abort.
	Chunks pagechunk.ChunkWriter

	TokenCounter pagechunk.TokenCounter
	RateLimiter  pagechunk.DomainLimiter
	Concurrency  int
	FetchTimeout time.Duration

	// Logger receives debug detail about cache repairs and token counting.
	// Nil discards.
	Logger *slog.Logger

	Now func() time.Time
}

// Result holds the outcome of an ingest run.
type Result struct {
	Succeeded int
	Failed    int
	Unchanged int
	Chunks    int
	Tokens    int
	Failures  map[string]error
}

// String returns the run summary line.
func (r *Result) String() string {
	return fmt.Sprintf("ingested %d pages (%d unchanged, %d failed), %d chunks",
		r.Succeeded, r.Unchanged, r.Failed, r.Chunks)
}

// fetchResult holds the outcome of processing a single URL.
type fetchResult struct {
	url  string
	page *pagechunk.Page
	err  error
}

// Ingest processes urls with bounded concurrency. Per-URL failures are
// recorded in the result and never abort the run; cache and chunk sink
// failures that are not tied to one page do.
func (i *Ingester) Ingest(ctx context.Context, urls []string, progress pagechunk.IngestProgressFunc) (*Result, error) {
	urls = NormalizeURLs(urls)
	result := &Result{Failures: make(map[string]error)}
	if len(urls) == 0 {
		return result, nil
	}

	concurrency := i.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan fetchResult, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, u := range urls {
			g.Go(func() error {
				page, err := i.processURL(gctx, u)
				resultCh <- fetchResult{url: u, page: page, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Single writer: only this loop touches the cache and the chunk sink.
	var fatal error
	completed := 0
	for res := range resultCh {
		completed++
		if fatal != nil {
			continue
		}

		unchanged := false
		err := res.err
		if err == nil {
			unchanged, err, fatal = i.store(ctx, res.page, result)
			if fatal != nil {
				err = fatal
			}
		}

		if err != nil {
			result.Failed++
			result.Failures[res.url] = err
		} else {
			result.Succeeded++
			if unchanged {
				result.Unchanged++
			}
		}

		if progress != nil {
			progress(pagechunk.IngestProgress{
				URL:       res.url,
				Completed: completed,
				Total:     len(urls),
				Unchanged: unchanged,
				Error:     err,
			})
		}
	}

	if fatal != nil {
		return result, fatal
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// store compares page against the manifest, persists it when changed and
// forwards its chunk records. Cache errors concern only this page; a chunk
// sink error is returned as fatal. A record that matches the manifest hash
// but cannot be read is rewritten.
func (i *Ingester) store(ctx context.Context, page *pagechunk.Page, result *Result) (unchanged bool, pageErr, fatal error) {
	page.ContentSHA1 = pagechunk.ContentHash(page.Sections)

	entry, err := i.Cache.Meta(ctx, page.URL)
	if err != nil && pagechunk.ErrorCode(err) != pagechunk.ENOTFOUND {
		return false, err, nil
	}
	if err == nil && entry.ContentSHA1 == page.ContentSHA1 {
		cached, err := i.Cache.Get(ctx, page.URL)
		if err == nil {
			unchanged = true
			page = cached
		} else {
			i.logger().Debug("rewriting unreadable cache record", "url", page.URL, "err", err)
		}
	}
	if !unchanged {
		if _, err := i.Cache.Put(ctx, page); err != nil {
			return false, err, nil
		}
	}

	if i.Builder == nil {
		return unchanged, nil, nil
	}
	chunks := i.Builder.Build(page)
	if i.Chunks != nil && len(chunks) > 0 {
		if err := i.Chunks.WriteChunks(ctx, chunks); err != nil {
			return unchanged, nil, fmt.Errorf("write chunks: %w", err)
		}
	}
	result.Chunks += len(chunks)

	if i.TokenCounter != nil && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for n, c := range chunks {
			texts[n] = c.Text
		}
		tokens, err := i.TokenCounter.CountTokens(ctx, strings.Join(texts, "\n\n"))
		if err != nil {
			i.logger().Debug("token count failed", "url", page.URL, "err", err)
		} else {
			result.Tokens += tokens
		}
	}
	return unchanged, nil, nil
}

// processURL fetches and extracts a single URL.
func (i *Ingester) processURL(ctx context.Context, rawURL string) (*pagechunk.Page, error) {
	if i.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, pagechunk.Errorf(pagechunk.EINVALID, "invalid url %q: %v", rawURL, err)
		}
		if err := i.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	fetchCtx := ctx
	if i.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, i.FetchTimeout)
		defer cancel()
	}

	html, err := i.Fetcher.Fetch(fetchCtx, rawURL)
	if err != nil {
		if pagechunk.ErrorCode(err) == pagechunk.EINTERNAL {
			return nil, pagechunk.Errorf(pagechunk.EFETCH, "fetch %s: %v", rawURL, err)
		}
		return nil, err
	}

	title, sections, err := i.extract(html, rawURL)
	if err != nil {
		return nil, err
	}
	if i.Cleaner != nil {
		sections = i.Cleaner.Clean(sections)
	}
	if title == "" {
		title = rawURL
	}

	return &pagechunk.Page{
		URL:       rawURL,
		Title:     title,
		FetchedAt: i.now(),
		Sections:  sections,
	}, nil
}

// extract runs the selected section extractors in rule order and falls
// back to main-content extraction when none of them found a section.
func (i *Ingester) extract(html, pageURL string) (string, []pagechunk.Section, error) {
	var title string
	var sections []pagechunk.Section

	if i.Selector != nil {
		for _, ex := range i.Selector.Select(pageURL) {
			res, err := ex.ExtractSections(html, pageURL)
			if err != nil {
				return "", nil, fmt.Errorf("%s: %w", ex.Name(), err)
			}
			if title == "" {
				title = res.Title
			}
			sections = append(sections, res.Sections...)
		}
	}
	if len(sections) > 0 {
		return title, sections, nil
	}

	if i.Fallback == nil || i.Converter == nil {
		return "", nil, pagechunk.Errorf(pagechunk.EEXTRACT, "no sections found in %s", pageURL)
	}

	extracted, err := i.Fallback.Extract(html, pageURL)
	if err != nil {
		return "", nil, err
	}
	markdown, err := i.Converter.Convert(extracted.ContentHTML, pageURL)
	if err != nil {
		return "", nil, err
	}
	if title == "" {
		title = extracted.Title
	}
	fallbackTitle := title
	if fallbackTitle == "" {
		fallbackTitle = pageURL
	}
	sections = pagechunk.SplitMarkdown(markdown, fallbackTitle)
	if len(sections) == 0 {
		return "", nil, pagechunk.Errorf(pagechunk.EEXTRACT, "no content found in %s", pageURL)
	}
	return title, sections, nil
}

func (i *Ingester) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (i *Ingester) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now().UTC()
}

// NormalizeURLs trims urls, drops blanks and removes duplicates while
// keeping the first occurrence's position.
func NormalizeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
