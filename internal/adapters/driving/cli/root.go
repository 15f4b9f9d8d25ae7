// Package cli provides the operational command-line interface: ingestion,
// querying, statistics, scheduling and maintenance commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rootiq-ai/earnings-rag-app/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/rootiq-ai/earnings-rag-app/internal/adapters/driven/llm/ollama"
	"github.com/rootiq-ai/earnings-rag-app/internal/adapters/driven/source/filesystem"
	"github.com/rootiq-ai/earnings-rag-app/internal/adapters/driven/storage/sqlite"
	"github.com/rootiq-ai/earnings-rag-app/internal/backup"
	"github.com/rootiq-ai/earnings-rag-app/internal/chunker"
	"github.com/rootiq-ai/earnings-rag-app/internal/config"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/services"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// Wired application services, built once in initApp.
var (
	cfg       *config.Config
	log       *logger.Logger
	store     *sqlite.Store
	embedder  driven.EmbeddingService
	generator driven.LLMService
	pipeline  *services.PipelineService
	scheduler *services.SchedulerService
	health    *services.HealthService
	backupSvc *backup.Service
	source    *filesystem.Source

	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "earnings-rag",
	Short: "Earnings-call retrieval-augmented query pipeline",
	Long: `earnings-rag indexes earnings-call disclosures into a local vector
index and answers questions about them, grounded in the retrieved
excerpts. Recurring extraction, backup and health-check jobs run on a
built-in scheduler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initApp()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default earnings_rag.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initApp loads configuration and wires every service. Commands that run
// before this (version, help) see nil services.
func initApp() error {
	path := cfgFile
	if path == "" {
		path = "earnings_rag.toml"
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log = openLogger()

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	embedder = ollama.NewEmbeddingService(ollama.Config{
		BaseURL:           cfg.OllamaHost,
		Model:             cfg.Embedding.Model,
		Timeout:           cfg.EmbeddingTimeout(),
		Dimensions:        cfg.Embedding.Dimensions,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	generator = llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: cfg.OllamaHost,
		Model:   cfg.Generation.Model,
		Timeout: cfg.GenerationTimeout(),
	})

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	pipeline = services.NewPipelineService(ch, embedder, generator, store.ChunkIndex(), services.PipelineConfig{
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		MaxResults:          cfg.Retrieval.MaxResults,
		ContextDocs:         cfg.Retrieval.ContextDocs,
		MaxAnswerTokens:     cfg.Retrieval.MaxAnswerTokens,
		Temperature:         cfg.Generation.Temperature,
	}, log)

	source, err = filesystem.NewSource(cfg.RawDir())
	if err != nil {
		return fmt.Errorf("opening artifact directory: %w", err)
	}

	health = services.NewHealthService(embedder, generator, cfg.DataDir, cfg.LogFile(), log)
	backupSvc = backup.New(cfg.DataDir, cfg.BackupDir(), 0, log)
	scheduler = services.NewSchedulerService(store.SchedulerStore(), log, 0)

	return nil
}

// openLogger tees log lines to stderr and the configured log file.
// A file that cannot be opened degrades to stderr only.
func openLogger() *logger.Logger {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return logger.New(os.Stderr, verbose)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return logger.New(os.Stderr, verbose)
	}
	logFile = f
	return logger.New(io.MultiWriter(os.Stderr, f), verbose)
}

func teardown() {
	if embedder != nil {
		embedder.Close() //nolint:errcheck
	}
	if generator != nil {
		generator.Close() //nolint:errcheck
	}
	if store != nil {
		store.Close() //nolint:errcheck
	}
	if logFile != nil {
		logFile.Close() //nolint:errcheck
	}
}
