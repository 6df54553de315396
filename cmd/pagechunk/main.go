package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagechunk"
	"github.com/fwojciec/pagechunk/fs"
	"github.com/fwojciec/pagechunk/gemini"
	pchttp "github.com/fwojciec/pagechunk/http"
	"github.com/fwojciec/pagechunk/qdrant"
	"github.com/fwojciec/pagechunk/rod"
	pcslog "github.com/fwojciec/pagechunk/slog"
	"github.com/fwojciec/pagechunk/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = m.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded into the environment before parsing when it
	// exists. Empty disables loading.
	EnvFile string

	// Collaborators for end-to-end testing. Nil values are replaced with
	// the production implementations.
	Fetcher      pagechunk.Fetcher
	TokenCounter pagechunk.TokenCounter
	Upserter     pagechunk.Upserter

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{EnvFile: ".env"}
}

// Close releases resources opened by Run.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		if _, err := os.Stat(m.EnvFile); err == nil {
			if err := godotenv.Load(m.EnvFile); err != nil {
				return pagechunk.Errorf(pagechunk.ECONFIG, "load %s: %v", m.EnvFile, err)
			}
		}
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagechunk"),
		kong.Description("Incremental page ingestion and chunking for retrieval"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagechunk --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	command := strings.Fields(kongCtx.Command())[0]

	cfg, err := m.loadConfig(cli, command)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	// Secrets are checked before any work is done.
	if command == "index" {
		upserter, err := m.openUpserter(ctx, cfg, deps.Logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", pagechunk.ErrorMessage(err))
			return err
		}
		deps.Upserter = upserter
	}

	if err := m.openStore(cfg, deps); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", pagechunk.ErrorMessage(err))
		return err
	}

	if command == "ingest" {
		fetcher, err := m.openFetcher(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", pagechunk.ErrorMessage(err))
			return err
		}
		m.closers = append(m.closers, fetcher)
		deps.Fetcher = pcslog.NewLoggingFetcher(fetcher, deps.Logger)

		deps.TokenCounter = m.TokenCounter
		if deps.TokenCounter == nil {
			tc, err := gemini.NewTokenCounter(cfg.Ingest.TokenizerModel)
			if err != nil {
				deps.Logger.Warn("token counting disabled", "err", err)
			} else {
				deps.TokenCounter = tc
			}
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) loadConfig(cli *CLI, command string) (*Config, error) {
	path, required := cli.Config, true
	if path == "" {
		path, required = DefaultConfigFile, false
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return nil, err
	}
	cli.apply(&cfg, command)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// openStore opens the configured page cache and index state backend.
func (m *Main) openStore(cfg *Config, deps *Dependencies) error {
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return pagechunk.Errorf(pagechunk.ECACHEIO, "create cache dir %s: %v", cfg.CacheDir, err)
	}

	var cache pagechunk.PageCache
	switch cfg.Store {
	case StoreSQLite:
		db := sqlite.NewDB(filepath.Join(cfg.CacheDir, "pagechunk.db"))
		if err := db.Open(); err != nil {
			return pagechunk.Errorf(pagechunk.ECACHEIO, "open database: %v", err)
		}
		m.closers = append(m.closers, db)
		cache = sqlite.NewPageCache(db, deps.Logger)
		deps.State = sqlite.NewIndexStateStore(db)
	default:
		fsCache := fs.NewPageCache(cfg.CacheDir, fs.WithLogger(deps.Logger))
		if err := fsCache.Open(); err != nil {
			return err
		}
		cache = fsCache
		deps.State = fs.NewIndexStateStore(filepath.Join(cfg.CacheDir, "state.json"), deps.Logger)
	}
	deps.Cache = pcslog.NewLoggingPageCache(cache, deps.Logger)
	return nil
}

// openFetcher returns the configured page fetcher.
func (m *Main) openFetcher(cfg *Config) (pagechunk.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if cfg.Ingest.Fetcher == FetcherBrowser {
		f, err := rod.NewFetcher(rod.WithUserAgent(cfg.Ingest.UserAgent))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return pchttp.NewFetcher(
		pchttp.WithTimeout(cfg.FetchTimeout()),
		pchttp.WithUserAgent(cfg.Ingest.UserAgent),
	), nil
}

// openUpserter wires Gemini embeddings into a Qdrant upserter.
func (m *Main) openUpserter(ctx context.Context, cfg *Config, logger *slog.Logger) (pagechunk.Upserter, error) {
	if m.Upserter != nil {
		return pcslog.NewLoggingUpserter(m.Upserter, logger), nil
	}
	if cfg.GeminiAPIKey == "" {
		return nil, pagechunk.Errorf(pagechunk.ECONFIG,
			"GEMINI_API_KEY / GOOGLE_API_KEY is not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECONFIG, "connect to Gemini API: %v", err)
	}
	embedder := gemini.NewEmbedder(client.Models,
		gemini.WithModel(cfg.Index.EmbeddingModel),
		gemini.WithBatchSize(cfg.Index.EmbedBatchSize),
	)

	qc, err := qdrant.Open(cfg.Index.QdrantHost, cfg.Index.QdrantPort, cfg.QdrantAPIKey)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, qc)

	upserter := qdrant.NewUpserter(qc, embedder, qdrant.WithCollection(cfg.Index.Collection))
	if err := upserter.Health(ctx); err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECONFIG, "qdrant at %s:%d unreachable: %v",
			cfg.Index.QdrantHost, cfg.Index.QdrantPort, err)
	}
	return pcslog.NewLoggingUpserter(upserter, logger), nil
}

// newLogger logs warnings to stderr, or everything when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
