package readability_test

import (
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directionsPage = `<!DOCTYPE html>
<html>
<head><title>Directions | Queens College</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Directions to Campus</h1>
<p>By subway, take the 7 train to Main Street and transfer to the Q17 or Q25 bus toward Kissena Boulevard.</p>
<p>By car, use the Long Island Expressway to exit 24 and follow signs for Kissena Boulevard and the main gate.</p>
<p>Parking for guests is available in Lot 6 and Lot 19; accessible parking is reserved near the Great Lawn.</p>
</article>
<footer>Footer links</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor()
		result, err := ext.Extract(directionsPage, "https://www.qc.cuny.edu/a/directions/")

		require.NoError(t, err)
		assert.Contains(t, result.Title, "Directions")
	})

	t.Run("extracts article content", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor()
		result, err := ext.Extract(directionsPage, "https://www.qc.cuny.edu/a/directions/")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "7 train to Main Street")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor()
		_, err := ext.Extract("  ", "")

		assert.Equal(t, pagechunk.EINVALID, pagechunk.ErrorCode(err))
	})
}
