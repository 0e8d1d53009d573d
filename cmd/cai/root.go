package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/agentinsights/internal/config"
	"github.com/fyrsmithlabs/agentinsights/internal/embeddings"
	"github.com/fyrsmithlabs/agentinsights/internal/extraction"
	"github.com/fyrsmithlabs/agentinsights/internal/llm"
	"github.com/fyrsmithlabs/agentinsights/internal/logging"
	"github.com/fyrsmithlabs/agentinsights/internal/records"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	configPath  string
	logLevel    string
	metricsFile string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cai",
		Short: "Extract, embed and search learnings from coding-agent sessions",
		Long: `cai works on the session database written by the indexer
(~/.code-agent-insights/insights.db).

  cai extract --all          extract learnings from sessions that have none
  cai embed                  embed learnings and session transcripts
  cai search "sqlite lock"   semantic search over extracted learnings

Configuration is read from ~/.code-agent-insights/config.yaml and CAI_*
environment variables (CAI_LLM_PROVIDER=openai, CAI_EMBEDDINGS_PROVIDER=hash).`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.code-agent-insights/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	root.AddCommand(
		newEmbedCmd(a),
		newExtractCmd(a),
		newSearchCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and installs a logger for the run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logCfg, err := logging.FromSettings(level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	logCfg.Fields = map[string]string{"version": version}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return err
	}
	a.logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithRunID(logging.WithLogger(ctx, logger), uuid.NewString())
	cmd.SetContext(ctx)

	logger.Debug(ctx, "configuration loaded",
		zap.String("insights_db", cfg.Paths.InsightsDB),
		zap.String("embeddings_db", cfg.Paths.EmbeddingsDB),
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
		zap.String("llm_provider", cfg.LLM.Provider),
		logging.Secret("llm_api_key", cfg.LLM.APIKey),
	)
	return nil
}

// teardown dumps metrics when requested and flushes the logger.
func (a *app) teardown(ctx context.Context) error {
	if a.logger == nil {
		return nil
	}
	path := a.metricsFile
	if path == "" && a.cfg != nil {
		path = a.cfg.Metrics.Textfile
	}
	if path != "" {
		if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
			a.logger.Warn(ctx, "failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
	_ = a.logger.Sync()
	return nil
}

func (a *app) zapLogger() *zap.Logger {
	return a.logger.Underlying()
}

func (a *app) openRecords(ctx context.Context) (*records.Store, error) {
	s, err := records.Open(ctx, a.cfg.Paths.InsightsDB, a.zapLogger().Named("records"))
	if errors.Is(err, records.ErrDatabaseNotFound) {
		return nil, fmt.Errorf("%w (run the indexer first)", err)
	}
	return s, err
}

func (a *app) openVectors(ctx context.Context) (*vectorstore.SQLiteStore, error) {
	return vectorstore.Open(ctx, vectorstore.Config{Path: a.cfg.Paths.EmbeddingsDB}, a.zapLogger().Named("vectorstore"))
}

func (a *app) newEmbedder() (embeddings.Provider, error) {
	c := a.cfg.Embeddings
	return embeddings.NewProvider(embeddings.ProviderConfig{
		Provider:  c.Provider,
		Model:     c.Model,
		BaseURL:   c.BaseURL,
		APIKey:    c.APIKey.Value(),
		CacheDir:  c.CacheDir,
		LibDir:    c.LibDir,
		Dimension: c.Dimension,
	}, a.zapLogger().Named("embeddings"))
}

func (a *app) newExtractor() (*extraction.Extractor, error) {
	c := a.cfg.LLM
	completer, err := llm.New(llm.Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey.Value(),
		BaseURL:   c.BaseURL,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout.Duration(),
		RateLimit: c.RateLimit,
		Burst:     c.Burst,
	}, a.zapLogger().Named("llm"))
	if err != nil {
		return nil, err
	}

	logger := a.zapLogger().Named("extraction")
	opts := []extraction.Option{
		extraction.WithSecretScrubbing(a.cfg.Extraction.ScrubSecrets),
		extraction.WithLogger(logger),
		extraction.WithMetrics(extraction.NewMetrics(logger)),
	}
	if a.cfg.Extraction.InferTags {
		opts = append(opts, extraction.WithTagInference(extraction.NewTagger(nil)))
	}
	return extraction.NewExtractor(completer, opts...), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cai version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cai %s (prompt %s)\n", version, extraction.PromptVersion)
		},
	}
}
