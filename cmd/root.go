package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"demoreel/internal/config"
	"demoreel/internal/embedder"
	"demoreel/internal/llm"
	"demoreel/internal/store"
)

var (
	flagConfig     string
	flagDB         string
	flagOllama     string
	flagEmbedModel string
	flagQdrant     string
	flagGenerator  string
	flagVerbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "demoreel",
	Short: "Generate spoken demo scripts from a codebase",
	Long: `demoreel analyzes a repository, detects its features and user flows,
indexes it into a vector store, and generates a short spoken-style
product demo script grounded in the retrieved code.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default .demoreel.yaml)")
	pf.StringVar(&flagDB, "db", "", "local index path (default <repo>/.demoreel/index.db)")
	pf.StringVar(&flagOllama, "ollama", "", "ollama base URL")
	pf.StringVar(&flagEmbedModel, "embed-model", "", "embedding model")
	pf.StringVar(&flagQdrant, "qdrant", "", "qdrant base URL (uses the local index when unset)")
	pf.StringVar(&flagGenerator, "generator", "", "generation backend: anthropic or ollama")
	pf.BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

func setupLogger() error {
	level := zapcore.InfoLevel
	if flagVerbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	var err error
	logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// loadConfig merges the config file with any flags the user set.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagOllama != "" {
		cfg.OllamaURL = flagOllama
	}
	if flagEmbedModel != "" {
		cfg.EmbedModel = flagEmbedModel
	}
	if flagQdrant != "" {
		cfg.QdrantURL = flagQdrant
	}
	if flagGenerator != "" {
		cfg.Generator = flagGenerator
	}
	return cfg, nil
}

// openStore picks Qdrant when configured, otherwise the embedded sqlite
// index under the repository.
func openStore(cfg *config.Config, repoRoot string) (store.VectorStore, error) {
	emb := embedder.NewOllama(cfg.OllamaURL, cfg.EmbedModel)
	if cfg.QdrantURL != "" {
		return store.NewQdrant(cfg.QdrantURL, emb)
	}
	dbPath := cfg.ResolveDBPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return store.OpenSQLite(dbPath, emb)
}

// openStoreOrWarn opens the vector store, logging a warning and returning nil
// when setup fails. Callers treat a nil store as "generate without retrieval".
func openStoreOrWarn(cfg *config.Config, repoRoot string) store.VectorStore {
	st, err := openStore(cfg, repoRoot)
	if err != nil {
		logger.Warn("vector store unavailable, continuing without retrieval", zap.Error(err))
		return nil
	}
	return st
}

func newGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.Generator {
	case "", "anthropic":
		return llm.NewAnthropic("", cfg.AnthropicModel)
	case "ollama":
		return llm.NewOllamaChat(cfg.OllamaURL, cfg.OllamaChatModel), nil
	default:
		return nil, fmt.Errorf("unknown generator %q (want anthropic or ollama)", cfg.Generator)
	}
}
