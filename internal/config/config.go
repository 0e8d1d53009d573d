// Package config loads cai configuration.
//
// Values come from built-in defaults, then ~/.code-agent-insights/config.yaml,
// then CAI_* environment variables. Provider API keys fall back to
// ANTHROPIC_API_KEY and OPENAI_API_KEY.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DataDirName is the directory under $HOME that holds all cai state.
const DataDirName = ".code-agent-insights"

// Config holds the complete cai configuration.
type Config struct {
	Paths      PathsConfig      `koanf:"paths"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Extraction ExtractionConfig `koanf:"extraction"`
	LLM        LLMConfig        `koanf:"llm"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// PathsConfig locates the databases. Empty file paths resolve under DataDir.
type PathsConfig struct {
	DataDir      string `koanf:"data_dir"`
	InsightsDB   string `koanf:"insights_db"`
	EmbeddingsDB string `koanf:"embeddings_db"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `koanf:"provider"` // fastembed, openai or hash
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url"`
	APIKey    Secret `koanf:"api_key"`
	CacheDir  string `koanf:"cache_dir"`
	LibDir    string `koanf:"lib_dir"`
	Dimension int    `koanf:"dimension"`
	BatchSize int    `koanf:"batch_size"`
}

// ExtractionConfig tunes learning extraction.
type ExtractionConfig struct {
	MinConfidence   float64 `koanf:"min_confidence"`
	MaxContextChars int     `koanf:"max_context_chars"`
	ScrubSecrets    bool    `koanf:"scrub_secrets"`
	SessionLimit    int     `koanf:"session_limit"`
	// InferTags adds keyword-derived tags to learnings the model left untagged.
	InferTags bool `koanf:"infer_tags"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider  string   `koanf:"provider"` // anthropic or openai
	Model     string   `koanf:"model"` // empty selects the provider's default
	APIKey    Secret   `koanf:"api_key"`
	BaseURL   string   `koanf:"base_url"`
	MaxTokens int      `koanf:"max_tokens"`
	Timeout   Duration `koanf:"timeout"`
	RateLimit float64  `koanf:"rate_limit"`
	Burst     int      `koanf:"burst"`
}

// LoggingConfig controls CLI logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig controls the optional Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: filepath.Join("~", DataDirName),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "fastembed",
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			BatchSize: 32,
		},
		Extraction: ExtractionConfig{
			MinConfidence:   0.7,
			MaxContextChars: 32000,
			ScrubSecrets:    true,
			SessionLimit:    100,
		},
		LLM: LLMConfig{
			Provider:  "anthropic",
			MaxTokens: 2000,
			Timeout:   Duration(2 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// resolvePaths expands ~ and fills database paths from DataDir.
func (c *Config) resolvePaths() error {
	dir, err := expandHome(c.Paths.DataDir)
	if err != nil {
		return err
	}
	c.Paths.DataDir = dir
	if c.Paths.InsightsDB == "" {
		c.Paths.InsightsDB = filepath.Join(dir, "insights.db")
	}
	if c.Paths.EmbeddingsDB == "" {
		c.Paths.EmbeddingsDB = filepath.Join(dir, "embeddings.db")
	}
	if c.Embeddings.CacheDir == "" {
		c.Embeddings.CacheDir = filepath.Join(dir, "models")
	}
	if c.Embeddings.LibDir == "" {
		c.Embeddings.LibDir = filepath.Join(dir, "lib")
	}
	for _, p := range []*string{&c.Paths.InsightsDB, &c.Paths.EmbeddingsDB, &c.Embeddings.CacheDir, &c.Embeddings.LibDir, &c.Metrics.Textfile} {
		if *p == "" {
			continue
		}
		if *p, err = expandHome(*p); err != nil {
			return err
		}
	}
	return nil
}

// applyProviderDefaults fills empty API keys from the providers'
// conventional environment variables and defaults the OpenAI endpoint.
func (c *Config) applyProviderDefaults() {
	if c.Embeddings.Provider == "openai" && c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = "https://api.openai.com/v1"
	}
	if !c.LLM.APIKey.IsSet() {
		switch c.LLM.Provider {
		case "anthropic", "":
			c.LLM.APIKey = Secret(os.Getenv("ANTHROPIC_API_KEY"))
		case "openai":
			c.LLM.APIKey = Secret(os.Getenv("OPENAI_API_KEY"))
		}
	}
	if !c.Embeddings.APIKey.IsSet() && c.Embeddings.Provider == "openai" {
		c.Embeddings.APIKey = Secret(os.Getenv("OPENAI_API_KEY"))
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Embeddings.Provider {
	case "fastembed", "openai", "hash":
	default:
		return fmt.Errorf("%w: embeddings.provider must be fastembed, openai or hash, got %q", ErrInvalidConfig, c.Embeddings.Provider)
	}
	if c.Embeddings.BatchSize < 1 {
		return fmt.Errorf("%w: embeddings.batch_size must be >= 1, got %d", ErrInvalidConfig, c.Embeddings.BatchSize)
	}
	if c.Embeddings.Dimension < 0 {
		return fmt.Errorf("%w: embeddings.dimension must be >= 0, got %d", ErrInvalidConfig, c.Embeddings.Dimension)
	}

	if c.Extraction.MinConfidence < 0 || c.Extraction.MinConfidence > 1 {
		return fmt.Errorf("%w: extraction.min_confidence must be in [0,1], got %v", ErrInvalidConfig, c.Extraction.MinConfidence)
	}
	if c.Extraction.MaxContextChars < 1000 {
		return fmt.Errorf("%w: extraction.max_context_chars must be >= 1000, got %d", ErrInvalidConfig, c.Extraction.MaxContextChars)
	}
	if c.Extraction.SessionLimit < 1 {
		return fmt.Errorf("%w: extraction.session_limit must be >= 1, got %d", ErrInvalidConfig, c.Extraction.SessionLimit)
	}

	switch c.LLM.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("%w: llm.provider must be anthropic or openai, got %q", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("%w: llm.max_tokens must be >= 1, got %d", ErrInvalidConfig, c.LLM.MaxTokens)
	}
	if c.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit must be >= 0, got %v", ErrInvalidConfig, c.LLM.RateLimit)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format must be 'json' or 'console', got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
