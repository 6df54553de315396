package mock

import "github.com/fwojciec/pagechunk"

var _ pagechunk.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagechunk.Converter.
type Converter struct {
	ConvertFn func(html, pageURL string) (string, error)
}

func (c *Converter) Convert(html, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}
