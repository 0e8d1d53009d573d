package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Provider names accepted by NewProvider.
const (
	ProviderFastEmbed = "fastembed"
	ProviderOpenAI    = "openai"
	ProviderHash      = "hash"
)

// DefaultModel is the sentence-transformers model the insights database was
// originally embedded with.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

var (
	// ErrInvalidConfig indicates the provider configuration is unusable.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")

	// ErrEmptyInput is returned when there is nothing to embed.
	ErrEmptyInput = errors.New("empty input")

	// ErrEmbeddingFailed wraps backend failures.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider generates embeddings. Every implementation returns unit vectors of
// length Dimension().
type Provider interface {
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is one of "fastembed" (default), "openai" or "hash".
	Provider string
	// Model is the embedding model name.
	Model string
	// BaseURL is the OpenAI-compatible endpoint (openai only).
	BaseURL string
	// APIKey authenticates against BaseURL (openai only).
	APIKey string
	// CacheDir is the model cache directory (fastembed only).
	CacheDir string
	// LibDir is searched for the ONNX runtime when ONNX_PATH is unset (fastembed only).
	LibDir string
	// Dimension overrides model-based dimension detection (openai, hash).
	Dimension int
	// ShowProgress enables model download progress (fastembed only).
	ShowProgress bool
}

// NewProvider creates an embedding provider based on the configuration and
// wraps it with metrics.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" && cfg.Provider != ProviderHash {
		cfg.Model = DefaultModel
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderFastEmbed, "":
		p, err = NewFastEmbedProvider(FastEmbedConfig{
			Model:        cfg.Model,
			CacheDir:     cfg.CacheDir,
			LibDir:       cfg.LibDir,
			ShowProgress: cfg.ShowProgress,
		})
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})
	case ProviderHash:
		p, err = NewHashProvider(cfg.Dimension)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = cfg.Provider
	}
	logger.Debug("embedding provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Int("dimension", p.Dimension()))
	return Instrument(p, model, NewMetrics(logger)), nil
}

// Normalize scales v to unit length in place and returns it. A zero vector is
// returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// knownDimensions lists output sizes of the models the providers are
// commonly pointed at.
var knownDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"fast-all-MiniLM-L6-v2":                  384,
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
	"BAAI/bge-small-zh-v1.5":                 512,
	"text-embedding-3-small":                 1536,
	"text-embedding-3-large":                 3072,
	"text-embedding-ada-002":                 1536,
}

// modelDimension returns the embedding dimension for a model name, or 0 when
// unknown.
func modelDimension(model string) int {
	return knownDimensions[model]
}
