package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/pagechunk"
	"golang.org/x/time/rate"
)

var _ pagechunk.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per host so that concurrent workers
// stay polite to each site without slowing each other down across hosts.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter returns a limiter allowing rps requests per second per
// host with the given burst. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until a request to domain is allowed.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
