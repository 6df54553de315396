package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pagechunk"
)

var _ pagechunk.ExtractorSelector = (*LoggingSelector)(nil)

// LoggingSelector wraps an ExtractorSelector and logs which rules apply
// to each URL.
type LoggingSelector struct {
	next   pagechunk.ExtractorSelector
	logger *slog.Logger
}

// NewLoggingSelector creates a new LoggingSelector.
func NewLoggingSelector(next pagechunk.ExtractorSelector, logger *slog.Logger) *LoggingSelector {
	return &LoggingSelector{next: next, logger: logger}
}

// Select delegates to the wrapped selector and logs the chosen rules.
func (s *LoggingSelector) Select(url string) []pagechunk.SectionExtractor {
	begin := time.Now()
	extractors := s.next.Select(url)
	names := make([]string, len(extractors))
	for i, e := range extractors {
		names[i] = e.Name()
	}
	s.logger.Debug("extractor selection",
		"url", url,
		"extractors", names,
		"duration", time.Since(begin),
	)
	return extractors
}
