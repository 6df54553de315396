// Package rod fetches pages through a headless Chrome browser so that
// content rendered by JavaScript is visible to the extractors.
package rod

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/pagechunk"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ pagechunk.Fetcher = (*Fetcher)(nil)

// DefaultMaxPages is the number of pages a browser renders before it is
// replaced. Chrome's memory use grows with every page and never returns
// to baseline.
const DefaultMaxPages = 75

// Fetcher renders pages in a headless browser. It is safe for concurrent
// use.
type Fetcher struct {
	userAgent string
	maxPages  int64

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	rendered atomic.Int64
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages sets how many pages are rendered before the browser is
// recycled.
func WithMaxPages(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithUserAgent overrides the browser's User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher launches a headless browser. Close must be called to stop it.
// It fails with ECONFIG when no Chrome or Chromium binary can be started.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to url, waits for the load event and returns the
// rendered document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser := f.current()
	if browser == nil {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "browser closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", pagechunk.Errorf(pagechunk.EFETCH, "open tab for %s: %v", url, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", pagechunk.Errorf(pagechunk.EFETCH, "set user agent: %v", err)
		}
	}

	html, err := render(page, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", pagechunk.Errorf(pagechunk.EFETCH, "render %s: %v", url, err)
	}
	f.rendered.Add(1)
	return html, nil
}

func render(page *rod.Page, url string) (string, error) {
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// Close stops the browser. It is safe to call more than once.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown()
}

// LauncherPID returns the browser process ID, or 0 once closed.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}

// current returns the live browser, replacing it first when it has
// rendered maxPages pages. A failed relaunch keeps the old browser.
func (f *Fetcher) current() *rod.Browser {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed.Load() {
		return nil
	}
	if f.rendered.Load() < f.maxPages {
		return f.browser
	}

	oldBrowser, oldLauncher := f.browser, f.launcher
	if err := f.launch(); err != nil {
		f.browser, f.launcher = oldBrowser, oldLauncher
		return f.browser
	}
	// In-flight pages on the old browser fail with a fetch error.
	_ = oldBrowser.Close()
	oldLauncher.Kill()
	f.rendered.Store(0)
	return f.browser
}

// launch starts a browser. Must be called with mu held or before the
// Fetcher is shared.
func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return pagechunk.Errorf(pagechunk.ECONFIG, "launch browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return pagechunk.Errorf(pagechunk.ECONFIG, "connect to browser: %v", err)
	}

	f.browser = browser
	f.launcher = l
	return nil
}

// shutdown must be called with mu held.
func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
