package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.Embeddings.Model)
	assert.Equal(t, 32, cfg.Embeddings.BatchSize)
	assert.Equal(t, 0.7, cfg.Extraction.MinConfidence)
	assert.Equal(t, 32000, cfg.Extraction.MaxContextChars)
	assert.True(t, cfg.Extraction.ScrubSecrets)
	assert.Equal(t, 100, cfg.Extraction.SessionLimit)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Empty(t, cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout.Duration())
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown embeddings provider", func(c *Config) { c.Embeddings.Provider = "word2vec" }},
		{"zero batch size", func(c *Config) { c.Embeddings.BatchSize = 0 }},
		{"negative dimension", func(c *Config) { c.Embeddings.Dimension = -1 }},
		{"confidence above one", func(c *Config) { c.Extraction.MinConfidence = 1.5 }},
		{"confidence below zero", func(c *Config) { c.Extraction.MinConfidence = -0.1 }},
		{"tiny context", func(c *Config) { c.Extraction.MaxContextChars = 10 }},
		{"zero session limit", func(c *Config) { c.Extraction.SessionLimit = 0 }},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "bard" }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"negative rate limit", func(c *Config) { c.LLM.RateLimit = -1 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	home := setupTestHome(t)

	cfg := Default()
	require.NoError(t, cfg.resolvePaths())

	dataDir := filepath.Join(home, DataDirName)
	assert.Equal(t, dataDir, cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "insights.db"), cfg.Paths.InsightsDB)
	assert.Equal(t, filepath.Join(dataDir, "embeddings.db"), cfg.Paths.EmbeddingsDB)
	assert.Equal(t, filepath.Join(dataDir, "models"), cfg.Embeddings.CacheDir)
	assert.Equal(t, filepath.Join(dataDir, "lib"), cfg.Embeddings.LibDir)
}

func TestApplyProviderDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	t.Setenv("OPENAI_API_KEY", "sk-openai-from-env")

	cfg := Default()
	cfg.applyProviderDefaults()
	assert.Equal(t, "sk-ant-from-env", cfg.LLM.APIKey.Value())
	assert.False(t, cfg.Embeddings.APIKey.IsSet())

	cfg = Default()
	cfg.LLM.Provider = "openai"
	cfg.Embeddings.Provider = "openai"
	cfg.applyProviderDefaults()
	assert.Equal(t, "sk-openai-from-env", cfg.LLM.APIKey.Value())
	assert.Equal(t, "sk-openai-from-env", cfg.Embeddings.APIKey.Value())
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embeddings.BaseURL)

	cfg = Default()
	cfg.LLM.APIKey = "explicit"
	cfg.applyProviderDefaults()
	assert.Equal(t, "explicit", cfg.LLM.APIKey.Value())
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-ant-very-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-ant-very-secret", s.Value())

	data, err := json.Marshal(struct{ Key Secret }{s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Key":"[REDACTED]"}`, string(data))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("45s")))
	assert.Equal(t, 45*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "45s", string(text))
}
