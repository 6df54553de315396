package pagechunk

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. pageURL resolves
	// relative links and may be empty.
	Convert(html, pageURL string) (string, error)
}
