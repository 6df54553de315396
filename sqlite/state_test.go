package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexStateStore(t *testing.T) {
	t.Parallel()

	t.Run("empty database yields empty state", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewIndexStateStore(setupTestDB(t))

		state, err := s.LoadIndexState(context.Background())

		require.NoError(t, err)
		assert.Empty(t, state)
	})

	t.Run("save replaces previous state", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s := sqlite.NewIndexStateStore(setupTestDB(t))
		require.NoError(t, s.SaveIndexState(ctx, pagechunk.IndexState{"a": "1", "b": "2"}))

		require.NoError(t, s.SaveIndexState(ctx, pagechunk.IndexState{"a": "3"}))

		state, err := s.LoadIndexState(ctx)
		require.NoError(t, err)
		assert.Equal(t, pagechunk.IndexState{"a": "3"}, state)
	})
}
