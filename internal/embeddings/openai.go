package embeddings

import (
	"context"
	"fmt"
	"sync"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint. Text
// Embeddings Inference serves the same API under /v1.
type OpenAIConfig struct {
	// BaseURL of the API, e.g. https://api.openai.com/v1 or http://localhost:8080/v1.
	BaseURL string
	// APIKey is sent as a bearer token. Self-hosted endpoints accept any value.
	APIKey string
	// Model is the embedding model name.
	Model string
	// Dimension is the expected output size. When zero it is taken from the
	// known model table, or learned from the first response.
	Dimension int
	// BatchSize bounds texts per request. Defaults to 32.
	BatchSize int
}

// OpenAIProvider embeds text through langchaingo's OpenAI client.
type OpenAIProvider struct {
	embedder lcembeddings.Embedder

	mu        sync.RWMutex
	dimension int
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required for the openai provider", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required for the openai provider", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "placeholder"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(client,
		lcembeddings.WithBatchSize(cfg.BatchSize),
		lcembeddings.WithStripNewLines(false),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	dim := cfg.Dimension
	if dim == 0 {
		dim = modelDimension(cfg.Model)
	}
	return &OpenAIProvider{embedder: embedder, dimension: dim}, nil
}

// Embed generates the embedding of a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	p.observe(vec)
	return Normalize(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vecs), len(texts))
	}
	for _, v := range vecs {
		p.observe(v)
		Normalize(v)
	}
	return vecs, nil
}

func (p *OpenAIProvider) observe(vec []float32) {
	p.mu.Lock()
	if p.dimension == 0 {
		p.dimension = len(vec)
	}
	p.mu.Unlock()
}

// Dimension returns the configured or observed embedding dimension.
func (p *OpenAIProvider) Dimension() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dimension
}

// Close is a no-op; the client holds no resources.
func (p *OpenAIProvider) Close() error {
	return nil
}
