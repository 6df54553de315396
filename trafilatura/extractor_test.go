package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const faqPage = `<!DOCTYPE html>
<html>
<head><title>FAQ - Commencement</title></head>
<body>
<nav class="main-nav"><ul><li><a href="/">Home</a></li><li><a href="/ce/">Commencement</a></li></ul></nav>
<main>
<article>
<h1>Frequently Asked Questions</h1>
<p>Graduates must arrive two hours before the ceremony to line up with their school.</p>
<p>Guests do not need tickets, but seating is first come, first served on the Great Lawn.</p>
</article>
</main>
<footer><p>Copyright 2025 Queens College</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(faqPage, "https://www.qc.cuny.edu/ce/faq/")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(faqPage, "https://www.qc.cuny.edu/ce/faq/")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "two hours before the ceremony")
		assert.NotContains(t, result.ContentHTML, "main-nav")
	})

	t.Run("tolerates an empty page url", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract(faqPage, "")

		require.NoError(t, err)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract("", "")

		assert.Equal(t, pagechunk.EINVALID, pagechunk.ErrorCode(err))
	})
}
