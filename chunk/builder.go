package chunk

import (
	"time"

	"github.com/fwojciec/pagechunk"
)

// Builder turns cached pages into chunk records.
type Builder struct {
	Chunker         pagechunk.Chunker
	PipelineVersion string

	// Now stamps pages without a fetch time. Defaults to time.Now.
	Now func() time.Time
}

// Build returns the chunk records for every section of page. Chunk
// indices restart at zero for each section.
func (b *Builder) Build(page *pagechunk.Page) []*pagechunk.Chunk {
	pageTitle := page.Title
	if pageTitle == "" {
		pageTitle = page.URL
	}
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = b.now()
	}
	version := b.PipelineVersion
	if version == "" {
		version = pagechunk.DefaultPipelineVersion
	}

	var chunks []*pagechunk.Chunk
	for _, sec := range page.Sections {
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		text := Normalize(sec.Text)
		if text == "" {
			continue
		}
		sectionSHA1 := pagechunk.SectionSHA1(text)

		for i, part := range b.Chunker.Split(title + "\n\n" + text) {
			chunks = append(chunks, &pagechunk.Chunk{
				Text: part,
				Meta: pagechunk.ChunkMeta{
					URL:             page.URL,
					PageTitle:       pageTitle,
					SectionTitle:    title,
					FetchedAt:       fetchedAt,
					ChunkIndex:      i,
					ChunkID:         pagechunk.ChunkID(page.URL, title, i, part),
					ContentSHA1:     page.ContentSHA1,
					SectionSHA1:     sectionSHA1,
					PipelineVersion: version,
					SourceType:      pagechunk.SourceTypeWeb,
				},
			})
		}
	}
	return chunks
}

// BuildAll concatenates Build over pages in order.
func (b *Builder) BuildAll(pages []*pagechunk.Page) []*pagechunk.Chunk {
	var chunks []*pagechunk.Chunk
	for _, p := range pages {
		chunks = append(chunks, b.Build(p)...)
	}
	return chunks
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}
