package pagechunk

import "context"

// DomainLimiter rate-limits requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
