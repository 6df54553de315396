package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fwojciec/pagechunk"
)

// Ensure IndexStateStore implements pagechunk.IndexStateStore at compile time.
var _ pagechunk.IndexStateStore = (*IndexStateStore)(nil)

// IndexStateStore keeps index state in a single JSON file.
type IndexStateStore struct {
	path   string
	logger *slog.Logger
}

// NewIndexStateStore returns a store backed by the file at path.
func NewIndexStateStore(path string, logger *slog.Logger) *IndexStateStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IndexStateStore{path: path, logger: logger}
}

// LoadIndexState returns the saved state. A missing or unreadable file
// yields empty state, which makes every page eligible for indexing.
func (s *IndexStateStore) LoadIndexState(ctx context.Context) (pagechunk.IndexState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return pagechunk.IndexState{}, nil
	} else if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "read index state: %v", err)
	}

	state := pagechunk.IndexState{}
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("index state corrupt, starting fresh", "path", s.path, "err", err)
		return pagechunk.IndexState{}, nil
	}
	return state, nil
}

// SaveIndexState atomically replaces the state file.
func (s *IndexStateStore) SaveIndexState(ctx context.Context, state pagechunk.IndexState) error {
	if state == nil {
		state = pagechunk.IndexState{}
	}
	if err := writeJSONAtomic(s.path, state); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "write index state: %v", err)
	}
	return nil
}
