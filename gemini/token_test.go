package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagechunk/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("")
	require.NoError(t, err)

	t.Run("counts tokens in text", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "Commencement starts at 10am.")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		short, err := tc.CountTokens(context.Background(), "Parking")
		require.NoError(t, err)
		long, err := tc.CountTokens(context.Background(), "Parking is available in Lot 4 and Lot 5; shuttles run every ten minutes from the main gate.")
		require.NoError(t, err)

		assert.Greater(t, long, short)
	})
}
