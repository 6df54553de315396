package sqlite

import (
	"context"

	"github.com/fwojciec/pagechunk"
)

// Compile-time interface verification.
var _ pagechunk.IndexStateStore = (*IndexStateStore)(nil)

// IndexStateStore implements pagechunk.IndexStateStore using SQLite.
type IndexStateStore struct {
	db *DB
}

// NewIndexStateStore creates a new IndexStateStore.
func NewIndexStateStore(db *DB) *IndexStateStore {
	return &IndexStateStore{db: db}
}

// LoadIndexState returns the saved state, empty if none was saved.
func (s *IndexStateStore) LoadIndexState(ctx context.Context) (pagechunk.IndexState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, content_sha1 FROM index_state`)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECACHEIO, "read index state: %v", err)
	}
	defer rows.Close()

	state := pagechunk.IndexState{}
	for rows.Next() {
		var url, sha string
		if err := rows.Scan(&url, &sha); err != nil {
			return nil, err
		}
		state[url] = sha
	}
	return state, rows.Err()
}

// SaveIndexState replaces the saved state in a single transaction.
func (s *IndexStateStore) SaveIndexState(ctx context.Context, state pagechunk.IndexState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "begin: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM index_state`); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "clear index state: %v", err)
	}
	for url, sha := range state {
		if _, err := tx.ExecContext(ctx, `INSERT INTO index_state (url, content_sha1) VALUES (?, ?)`, url, sha); err != nil {
			return pagechunk.Errorf(pagechunk.ECACHEIO, "write index state: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "commit: %v", err)
	}
	return nil
}
