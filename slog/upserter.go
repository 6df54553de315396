package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.Upserter = (*LoggingUpserter)(nil)

// LoggingUpserter wraps an Upserter with logging.
type LoggingUpserter struct {
	next   pagechunk.Upserter
	logger *slog.Logger
}

// NewLoggingUpserter creates a new LoggingUpserter.
func NewLoggingUpserter(next pagechunk.Upserter, logger *slog.Logger) *LoggingUpserter {
	return &LoggingUpserter{next: next, logger: logger}
}

// Upsert delegates to the wrapped upserter.
func (u *LoggingUpserter) Upsert(ctx context.Context, chunks []*pagechunk.Chunk) (err error) {
	defer func(begin time.Time) {
		u.logger.Info("upsert",
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return u.next.Upsert(ctx, chunks)
}
