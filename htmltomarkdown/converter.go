// Package htmltomarkdown turns extracted HTML blocks into markdown text.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pagechunk"
)

// Ensure Converter implements pagechunk.Converter at compile time.
var _ pagechunk.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithBulletListMarker("-"),
			),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Relative links are
// resolved against pageURL when it is set.
func (c *Converter) Convert(html, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", pagechunk.Errorf(pagechunk.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}

	result, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
