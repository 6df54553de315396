package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/chunk"
	"github.com/fwojciec/pagechunk/clean"
	"github.com/fwojciec/pagechunk/crawl"
	"github.com/fwojciec/pagechunk/gemini"
	pchttp "github.com/fwojciec/pagechunk/http"
	"github.com/fwojciec/pagechunk/index"
	"github.com/fwojciec/pagechunk/qdrant"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "pagechunk.toml"

// DefaultURLs are ingested when neither arguments nor config name any.
var DefaultURLs = []string{
	"https://www.qc.cuny.edu/ce/for-graduates/",
	"https://www.qc.cuny.edu/ce/for-guests/",
	"https://www.qc.cuny.edu/a/directions/",
	"https://www.qc.cuny.edu/ce/faq/",
}

// Store backends.
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Fetchers.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// Fallback extractors.
const (
	FallbackMain        = "main"
	FallbackTrafilatura = "trafilatura"
	FallbackReadability = "readability"
)

// Config is the resolved configuration handed to every command.
type Config struct {
	CacheDir string   `toml:"cache_dir"`
	Store    string   `toml:"store"`
	URLs     []string `toml:"urls"`

	Ingest IngestConfig `toml:"ingest"`
	Clean  CleanConfig  `toml:"clean"`
	Chunk  ChunkConfig  `toml:"chunk"`
	Index  IndexConfig  `toml:"index"`

	// Secrets come from the environment only.
	GeminiAPIKey string `toml:"-"`
	QdrantAPIKey string `toml:"-"`
}

// IngestConfig configures fetching and extraction.
type IngestConfig struct {
	Concurrency    int     `toml:"concurrency"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RPS            float64 `toml:"rps"`
	Fetcher        string  `toml:"fetcher"`
	UserAgent      string  `toml:"user_agent"`
	Fallback       string  `toml:"fallback"`
	Output         string  `toml:"output"`
	TokenizerModel string  `toml:"tokenizer_model"`
}

// CleanConfig configures section cleaning.
type CleanConfig struct {
	DenyTitles   []string `toml:"deny_titles"`
	NoisePattern string   `toml:"noise_pattern"`
	MinLength    int      `toml:"min_length"`
}

// ChunkConfig configures chunking.
type ChunkConfig struct {
	Strategy        string `toml:"strategy"`
	MaxChars        int    `toml:"max_chars"`
	Overlap         int    `toml:"overlap"`
	PipelineVersion string `toml:"pipeline_version"`
}

// IndexConfig configures embedding and the vector index.
type IndexConfig struct {
	Collection     string `toml:"collection"`
	EmbeddingModel string `toml:"embedding_model"`
	EmbedBatchSize int    `toml:"embed_batch_size"`
	UpsertBatch    int    `toml:"upsert_batch"`
	QdrantHost     string `toml:"qdrant_host"`
	QdrantPort     int    `toml:"qdrant_port"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	cleanCfg := clean.DefaultConfig()
	chunkCfg := chunk.DefaultConfig()
	return Config{
		CacheDir: ".pagechunk",
		Store:    StoreFS,
		Ingest: IngestConfig{
			Concurrency:    crawl.DefaultConcurrency,
			TimeoutSeconds: int(pchttp.DefaultFetchTimeout / time.Second),
			Fetcher:        FetcherHTTP,
			UserAgent:      pchttp.DefaultUserAgent,
			Fallback:       FallbackMain,
			TokenizerModel: gemini.DefaultTokenizerModel,
		},
		Clean: CleanConfig{
			DenyTitles:   cleanCfg.DenyTitles,
			NoisePattern: cleanCfg.NoisePattern.String(),
			MinLength:    cleanCfg.MinLength,
		},
		Chunk: ChunkConfig{
			Strategy:        chunkCfg.Strategy,
			MaxChars:        chunkCfg.MaxSize,
			Overlap:         chunkCfg.Overlap,
			PipelineVersion: pagechunk.DefaultPipelineVersion,
		},
		Index: IndexConfig{
			Collection:     qdrant.DefaultCollection,
			EmbeddingModel: gemini.DefaultEmbeddingModel,
			EmbedBatchSize: gemini.DefaultBatchSize,
			UpsertBatch:    index.DefaultBatchSize,
			QdrantHost:     "localhost",
			QdrantPort:     6334,
		},
	}
}

// LoadConfig reads path over DefaultConfig. A missing file yields the
// defaults unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	} else if err != nil {
		return cfg, pagechunk.Errorf(pagechunk.ECONFIG, "read config %s: %v", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, pagechunk.Errorf(pagechunk.ECONFIG, "parse config %s: %v", path, err)
	}
	return cfg, nil
}

// Validate reports settings no command can run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFS, StoreSQLite:
	default:
		return pagechunk.Errorf(pagechunk.ECONFIG, "unknown store %q (want fs or sqlite)", c.Store)
	}
	switch c.Ingest.Fetcher {
	case FetcherHTTP, FetcherBrowser:
	default:
		return pagechunk.Errorf(pagechunk.ECONFIG, "unknown fetcher %q (want http or browser)", c.Ingest.Fetcher)
	}
	switch c.Ingest.Fallback {
	case FallbackMain, FallbackTrafilatura, FallbackReadability:
	default:
		return pagechunk.Errorf(pagechunk.ECONFIG, "unknown fallback %q", c.Ingest.Fallback)
	}
	if c.CacheDir == "" {
		return pagechunk.Errorf(pagechunk.ECONFIG, "cache directory required")
	}
	if _, err := c.CleanerConfig(); err != nil {
		return err
	}
	if err := c.ChunkerConfig().Validate(); err != nil {
		return pagechunk.Errorf(pagechunk.ECONFIG, "chunking: %s", pagechunk.ErrorMessage(err))
	}
	return nil
}

// ChunkerConfig returns the chunk package configuration.
func (c *Config) ChunkerConfig() chunk.Config {
	return chunk.Config{
		Strategy: c.Chunk.Strategy,
		MaxSize:  c.Chunk.MaxChars,
		Overlap:  c.Chunk.Overlap,
	}
}

// CleanerConfig returns the clean package configuration. An empty noise
// pattern disables pattern filtering.
func (c *Config) CleanerConfig() (clean.Config, error) {
	cfg := clean.Config{
		DenyTitles: c.Clean.DenyTitles,
		MinLength:  c.Clean.MinLength,
	}
	if c.Clean.NoisePattern != "" {
		re, err := regexp.Compile(c.Clean.NoisePattern)
		if err != nil {
			return cfg, pagechunk.Errorf(pagechunk.ECONFIG, "noise pattern: %v", err)
		}
		cfg.NoisePattern = re
	}
	return cfg, nil
}

// ChunksPath returns where chunk records are written.
func (c *Config) ChunksPath() string {
	if c.Ingest.Output != "" {
		return c.Ingest.Output
	}
	return filepath.Join(c.CacheDir, "chunks.jsonl")
}

// FetchTimeout returns the per-fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Ingest.TimeoutSeconds) * time.Second
}
