package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAI completes through an OpenAI-compatible chat endpoint.
type OpenAI struct {
	model     llms.Model
	maxTokens int
}

// NewOpenAI creates a chat completer. A BaseURL without an APIKey is allowed
// for self-hosted endpoints.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: openai", ErrMissingAPIKey)
		}
		cfg.APIKey = "placeholder"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &OpenAI{model: client, maxTokens: cfg.MaxTokens}, nil
}

// Complete sends a system and a human message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]llms.MessageContent, 0, 2)
	if system != "" {
		msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeHuman, user))

	resp, err := o.model.GenerateContent(ctx, msgs, llms.WithMaxTokens(o.maxTokens))
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

var _ Completer = (*OpenAI)(nil)
