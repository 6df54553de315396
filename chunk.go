package pagechunk

import (
	"context"
	"strconv"
	"time"
)

// SourceTypeWeb marks chunks produced from fetched web pages.
const SourceTypeWeb = "web"

// DefaultPipelineVersion is stamped on chunks unless configured otherwise.
// Bump it when cleaning or chunking rules change.
const DefaultPipelineVersion = "v1"

// Chunk is a bounded piece of a section, ready for embedding.
type Chunk struct {
	Text string    `json:"text"`
	Meta ChunkMeta `json:"meta"`
}

// ChunkMeta carries provenance for a chunk.
type ChunkMeta struct {
	URL             string    `json:"url"`
	PageTitle       string    `json:"page_title"`
	SectionTitle    string    `json:"section_title"`
	FetchedAt       time.Time `json:"fetched_at"`
	ChunkIndex      int       `json:"chunk_index"`
	ChunkID         string    `json:"chunk_id"`
	ContentSHA1     string    `json:"content_sha1"`
	SectionSHA1     string    `json:"section_sha1"`
	PipelineVersion string    `json:"pipeline_version"`
	SourceType      string    `json:"source_type"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	if c.Meta.ChunkID == "" {
		return Errorf(EINVALID, "chunk id required")
	}
	if c.Meta.URL == "" {
		return Errorf(EINVALID, "chunk url required")
	}
	return nil
}

// ChunkID derives a stable identity for the index-th chunk of a section.
// Identical input yields the same id across runs; different text yields a
// different id.
func ChunkID(url, sectionTitle string, index int, text string) string {
	return sha1Hex(url + "::" + sectionTitle + "::" + strconv.Itoa(index) + "::" + sha1Hex(text))
}

// Chunker splits text into bounded pieces.
type Chunker interface {
	// Split returns the chunks of text in order. Empty input yields none.
	Split(text string) []string
}

// ChunkWriter persists chunk records with atomic semantics.
// WriteChunks stages records; Commit makes them permanent; Abort discards them.
type ChunkWriter interface {
	WriteChunks(ctx context.Context, chunks []*Chunk) error
	Commit() error
	Abort() error
}

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter writes chunk records into a downstream vector index.
type Upserter interface {
	Upsert(ctx context.Context, chunks []*Chunk) error
}
