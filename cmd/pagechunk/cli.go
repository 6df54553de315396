package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagechunk"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Config       *Config
	Cache        pagechunk.PageCache
	State        pagechunk.IndexStateStore
	Fetcher      pagechunk.Fetcher
	TokenCounter pagechunk.TokenCounter
	Upserter     pagechunk.Upserter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `help:"TOML config file (default: ./pagechunk.toml when present)" env:"PAGECHUNK_CONFIG" type:"path"`
	CacheDir string `name:"cache-dir" help:"Cache directory" env:"PAGECHUNK_CACHE_DIR" type:"path"`
	Store    string `help:"Page cache backend: fs or sqlite" env:"PAGECHUNK_STORE"`
	Verbose  bool   `short:"v" help:"Log debug output to stderr"`

	Strategy string `help:"Chunking strategy: sentence or paragraph" env:"CHUNK_STRATEGY"`
	MaxChars *int   `name:"max-chars" help:"Maximum chunk size in characters" env:"CHUNK_MAX_CHARS"`
	Overlap  *int   `help:"Characters carried over between chunks" env:"CHUNK_OVERLAP"`

	Ingest IngestCmd `cmd:"" help:"Fetch pages, cache cleaned sections and write chunk records"`
	Chunk  ChunkCmd  `cmd:"" help:"Rebuild chunk records from the page cache"`
	Index  IndexCmd  `cmd:"" help:"Embed changed pages and upsert them into the vector index"`
	List   ListCmd   `cmd:"" help:"List cached pages"`
	Prune  PruneCmd  `cmd:"" help:"Delete cached records no longer referenced by the manifest"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	URLs        []string      `arg:"" optional:"" name:"url" help:"URLs to ingest (default: configured URLs)"`
	Concurrency *int          `short:"c" help:"Concurrent fetch limit"`
	Timeout     time.Duration `short:"t" help:"Fetch timeout per page"`
	RPS         *float64      `name:"rps" help:"Requests per second per host (0 = unlimited)"`
	Browser     bool          `help:"Render pages in headless Chrome before extraction"`
	Output      string        `short:"o" help:"Chunk record output file" type:"path"`
}

// ChunkCmd is the "chunk" subcommand.
type ChunkCmd struct {
	Output string `short:"o" help:"Chunk record output file" type:"path"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	ReindexAll     bool   `name:"reindex-all" help:"Ignore saved index state and index every cached page"`
	Collection     string `help:"Vector collection name"`
	EmbeddingModel string `name:"embed-model" help:"Gemini embedding model" env:"GEMINI_EMBED_MODEL"`
	EmbedBatchSize *int   `name:"embed-batch-size" help:"Texts per embedding request" env:"EMBED_BATCH_SIZE"`
	QdrantHost     string `name:"qdrant-host" help:"Qdrant gRPC host" env:"QDRANT_HOST"`
	QdrantPort     *int   `name:"qdrant-port" help:"Qdrant gRPC port" env:"QDRANT_PORT"`
	GeminiAPIKey   string `name:"gemini-api-key" hidden:"" env:"GEMINI_API_KEY,GOOGLE_API_KEY"`
	QdrantAPIKey   string `name:"qdrant-api-key" hidden:"" env:"QDRANT_API_KEY"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// PruneCmd is the "prune" subcommand.
type PruneCmd struct{}

// apply overlays flags that were set on cfg. Numeric flags are pointers so
// an explicit zero still overrides the config file.
func (c *CLI) apply(cfg *Config, command string) {
	setString(&cfg.CacheDir, c.CacheDir)
	setString(&cfg.Store, c.Store)
	setString(&cfg.Chunk.Strategy, c.Strategy)
	setInt(&cfg.Chunk.MaxChars, c.MaxChars)
	setInt(&cfg.Chunk.Overlap, c.Overlap)

	switch command {
	case "ingest":
		setInt(&cfg.Ingest.Concurrency, c.Ingest.Concurrency)
		if c.Ingest.Timeout > 0 {
			cfg.Ingest.TimeoutSeconds = int(c.Ingest.Timeout / time.Second)
		}
		setFloat(&cfg.Ingest.RPS, c.Ingest.RPS)
		if c.Ingest.Browser {
			cfg.Ingest.Fetcher = FetcherBrowser
		}
		setString(&cfg.Ingest.Output, c.Ingest.Output)
	case "chunk":
		setString(&cfg.Ingest.Output, c.Chunk.Output)
	case "index":
		setString(&cfg.Index.Collection, c.Index.Collection)
		setString(&cfg.Index.EmbeddingModel, c.Index.EmbeddingModel)
		setInt(&cfg.Index.EmbedBatchSize, c.Index.EmbedBatchSize)
		setString(&cfg.Index.QdrantHost, c.Index.QdrantHost)
		setInt(&cfg.Index.QdrantPort, c.Index.QdrantPort)
		cfg.GeminiAPIKey = c.Index.GeminiAPIKey
		cfg.QdrantAPIKey = c.Index.QdrantAPIKey
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
