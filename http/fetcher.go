// Package http provides an HTTP-based implementation of pagechunk.Fetcher
// for static pages that don't require JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pagechunk"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 25 * time.Second

// DefaultUserAgent identifies the fetcher to the sites it reads.
const DefaultUserAgent = "pagechunk/1.0 (+https://github.com/fwojciec/pagechunk)"

// DefaultMaxBodySize is the largest response body accepted.
const DefaultMaxBodySize = 10 << 20

// Ensure Fetcher implements pagechunk.Fetcher at compile time.
var _ pagechunk.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP GET requests.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (25s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the largest response body accepted. Larger bodies
// fail with EFETCH.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithClient replaces the underlying HTTP client. Its Timeout is
// overwritten by the configured timeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout

	return f
}

// Fetch retrieves the HTML content from the given URL. Transport failures
// and non-200 responses are reported as EFETCH.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", pagechunk.Errorf(pagechunk.EINVALID, "invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "read %s: %v", url, err)
	}
	if int64(len(body)) > f.maxBody {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "response from %s exceeds %d bytes", url, f.maxBody)
	}

	return string(body), nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
