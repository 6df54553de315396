package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/pagechunk"
)

// Ensure ChunkFile implements pagechunk.ChunkWriter at compile time.
var _ pagechunk.ChunkWriter = (*ChunkFile)(nil)

// ChunkFile writes chunk records as JSON lines with atomic update semantics.
// Records are written to <path>.tmp and renamed over <path> on Commit.
type ChunkFile struct {
	path string

	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

// NewChunkFile creates a ChunkFile targeting path.
func NewChunkFile(path string) *ChunkFile {
	return &ChunkFile{path: path}
}

func (c *ChunkFile) tempPath() string {
	return c.path + ".tmp"
}

// WriteChunks appends records to the pending file.
func (c *ChunkFile) WriteChunks(ctx context.Context, chunks []*pagechunk.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.f == nil {
		if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
			return err
		}
		f, err := os.Create(c.tempPath())
		if err != nil {
			return err
		}
		c.f = f
		c.w = bufio.NewWriter(f)
		c.enc = json.NewEncoder(c.w)
		c.enc.SetEscapeHTML(false)
	}

	for _, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.enc.Encode(ch); err != nil {
			return err
		}
	}
	return nil
}

// Commit flushes pending records and moves them into place. Committing
// without any write produces an empty file.
func (c *ChunkFile) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.f == nil {
		if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
			return err
		}
		return writeFileAtomic(c.path, nil)
	}

	if err := c.w.Flush(); err != nil {
		return err
	}
	if err := c.f.Sync(); err != nil {
		return err
	}
	if err := c.close(); err != nil {
		return err
	}
	return os.Rename(c.tempPath(), c.path)
}

// Abort discards pending records, leaving any committed file untouched.
func (c *ChunkFile) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.close(); err != nil {
		return err
	}
	if err := os.Remove(c.tempPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *ChunkFile) close() error {
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f, c.w, c.enc = nil, nil, nil
	return err
}

// ReadChunkFile loads every record from a committed chunk file.
func ReadChunkFile(path string) ([]*pagechunk.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []*pagechunk.Chunk
	dec := json.NewDecoder(f)
	for dec.More() {
		var ch pagechunk.Chunk
		if err := dec.Decode(&ch); err != nil {
			return nil, err
		}
		chunks = append(chunks, &ch)
	}
	return chunks, nil
}
