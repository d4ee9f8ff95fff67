// Package main is the coachrag CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/coachrag/internal/cli"
	"github.com/hyperjump/coachrag/internal/config"
	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/extract"
	"github.com/hyperjump/coachrag/internal/indexer"
	"github.com/hyperjump/coachrag/internal/language"
	"github.com/hyperjump/coachrag/internal/llm"
	"github.com/hyperjump/coachrag/internal/prompt"
	"github.com/hyperjump/coachrag/internal/search"
	"github.com/hyperjump/coachrag/internal/server"
	"github.com/hyperjump/coachrag/internal/vector"
	"github.com/hyperjump/coachrag/internal/watcher"
	"github.com/hyperjump/coachrag/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/coachrag/config.yaml"
	startupTimeout    = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present; when neither exists the built-in defaults
// (plus environment overrides) are used. Returns the config and the path loaded,
// empty for built-in defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "upload":
		runUpload()
	case "query":
		runQuery()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("coachrag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (retrieved references, prompts, reloads)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	components, err := initializeComponents(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Server.Reload && cfg.Prompt.TemplatePath != "" {
		w, err := watcher.NewWatcher(
			[]string{cfg.Prompt.TemplatePath},
			components.Composer.Reload,
			watcher.WithLogger(logger),
		)
		if err != nil {
			logger.Warn("template watcher disabled", zap.Error(err))
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("template watcher failed to start", zap.Error(err))
		} else {
			defer w.Stop()
			logger.Info("watching prompt template", zap.String("path", cfg.Prompt.TemplatePath))
		}
	}

	srv := server.NewServer(components.Engine, components.Indexer, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down server...")
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}

// clientFlags registers the flags shared by the HTTP client subcommands.
func clientFlags(fs *flag.FlagSet) (serverURL, output *string) {
	serverURL = fs.String("server", cli.DefaultServerURL, "server URL")
	output = fs.String("output", string(cli.OutputText), "output format: text or json")
	return serverURL, output
}

func parseOutput(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func exitOnError(action string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", action, err)
	os.Exit(1)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	serverURL, output := clientFlags(fs)
	singleChunk := fs.Bool("single-chunk", false, "store the whole document as one chunk")
	priority := fs.Int("priority", 1, "document priority, 1 (highest) to 5")
	_ = fs.Parse(reorderArgs(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: coachrag upload [flags] <file>")
		os.Exit(1)
	}
	format := parseOutput(*output)

	resp, err := cli.NewClient(*serverURL).Upload(context.Background(), fs.Arg(0), *singleChunk, *priority)
	exitOnError("Upload", err)
	exitOnError("Write output", cli.WriteUpload(os.Stdout, resp, format))
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	serverURL, output := clientFlags(fs)
	_ = fs.Parse(reorderArgs(os.Args[2:]))
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: coachrag query [flags] <question>")
		os.Exit(1)
	}
	format := parseOutput(*output)

	resp, err := cli.NewClient(*serverURL).Query(context.Background(), query)
	exitOnError("Query", err)
	exitOnError("Write output", cli.WriteQuery(os.Stdout, resp, format))
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL, output := clientFlags(fs)
	_ = fs.Parse(reorderArgs(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: coachrag delete [flags] <doc_id>")
		os.Exit(1)
	}
	format := parseOutput(*output)

	resp, err := cli.NewClient(*serverURL).Delete(context.Background(), fs.Arg(0))
	exitOnError("Delete", err)
	exitOnError("Write output", cli.WriteDelete(os.Stdout, resp, format))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL, output := clientFlags(fs)
	_ = fs.Parse(os.Args[2:])
	format := parseOutput(*output)

	resp, err := cli.NewClient(*serverURL).Status(context.Background())
	exitOnError("Status", err)
	exitOnError("Write output", cli.WriteStatus(os.Stdout, resp, format))
}

// reorderArgs moves flags before positional arguments so that
// "coachrag query how do I delegate --output json" parses the flag.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && i+1 < len(args) && takesValue(a) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

// takesValue reports whether flag name expects a separate value argument.
func takesValue(name string) bool {
	switch strings.TrimLeft(name, "-") {
	case "server", "output", "priority":
		return true
	}
	return false
}

// Components holds the long-lived server dependencies.
type Components struct {
	Embedder embedding.Embedder
	Store    vector.Store
	LLM      *llm.Client
	Composer *prompt.Composer
	Indexer  *indexer.Indexer
	Engine   *search.Engine
}

// Close releases all resources held by the components.
func (c *Components) Close() {
	if c.LLM != nil {
		_ = c.LLM.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	embedder, err := embedding.NewEmbedder(ctx, &cfg.Embedding, utils.NamedOrNop(logger, "embedding"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	store, err := vector.Open(ctx, &cfg.VectorStore, embedder, utils.NamedOrNop(logger, "vector"))
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store
	logger.Info("vector store ready", zap.String("type", store.Type()), zap.String("embedding", embedder.Name()))

	client, err := llm.New(ctx, &cfg.LLM, utils.NamedOrNop(logger, "llm"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	c.LLM = client

	c.Composer = prompt.NewComposer(prompt.WithLogger(utils.NamedOrNop(logger, "prompt")))
	if cfg.Prompt.TemplatePath != "" {
		if err := c.Composer.LoadFile(cfg.Prompt.TemplatePath); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load prompt template: %w", err)
		}
	}

	detector := language.NewDetector(
		language.WithFallback(cfg.Language.Fallback),
		language.WithMinConfidence(cfg.Language.MinConfidence),
		language.WithLogger(utils.NamedOrNop(logger, "language")),
	)
	// Text is stored and queried in the language it arrives in.
	var translator language.Translator = language.Passthrough{}
	chunker := indexer.NewChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap,
		indexer.WithSingleChunkLimit(cfg.Chunker.SingleChunkLimit))

	c.Indexer = indexer.NewIndexer(store, extract.NewExtractor(), chunker,
		indexer.WithLogger(utils.NamedOrNop(logger, "indexer")),
		indexer.WithDetector(detector),
		indexer.WithTranslator(translator),
	)
	c.Engine = search.NewEngine(store, c.Composer, client, cfg.VectorStore.QuerySize,
		search.WithLogger(utils.NamedOrNop(logger, "search")),
		search.WithDetector(detector),
		search.WithTranslator(translator),
	)
	return c, nil
}

func printUsage() {
	fmt.Println(`coachrag - Retrieval-augmented coaching backend

Usage:
  coachrag server [flags]               Start the HTTP server
  coachrag upload [flags] <file>        Upload a document (txt, md, pdf, docx, xlsx)
  coachrag query [flags] <question>     Ask the coach a question
  coachrag delete [flags] <doc_id>      Delete every chunk of a document
  coachrag status [flags]               Show chunk count and backend settings
  coachrag version                      Show version
  coachrag help                         Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/coachrag/config.yaml)
  --debug            Enable debug logging

Client Flags (upload, query, delete, status):
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Upload Flags:
  --single-chunk     Store the document as one chunk (at most 256 characters)
  --priority int     Priority 1 (highest) to 5 (default: 1)

Examples:
  coachrag server --debug
  coachrag upload --priority 2 handbook.pdf
  coachrag upload --single-chunk tip.txt
  coachrag query "How do I give feedback to a senior engineer?"
  coachrag query --output json "How do I run a retro?"
  coachrag delete 3f2a9c0e5b7d4e1f8a6b2c9d0e1f2a3b
  coachrag status`)
}
