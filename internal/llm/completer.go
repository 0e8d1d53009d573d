package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultMaxTokens      = 2000
	DefaultTimeout        = 2 * time.Minute
)

var (
	// ErrMissingAPIKey is returned when a provider needs a key and none is configured.
	ErrMissingAPIKey = errors.New("llm: API key required")

	// ErrInvalidConfig indicates an unusable completer configuration.
	ErrInvalidConfig = errors.New("llm: invalid configuration")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Completer produces a completion for a system instruction and a user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Config configures a Completer.
type Config struct {
	// Provider is "anthropic" (default) or "openai".
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint.
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	// RateLimit is the sustained request rate per second; 0 disables limiting.
	RateLimit float64
	Burst     int
}

// New builds the configured Completer, wrapped in RateLimited when a rate is set.
func New(cfg Config, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var (
		c   Completer
		err error
	)
	switch cfg.Provider {
	case ProviderAnthropic, "":
		c, err = NewAnthropic(cfg)
	case ProviderOpenAI:
		c, err = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("completer ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Float64("rate_limit", cfg.RateLimit))

	if cfg.RateLimit > 0 {
		c = RateLimited(c, cfg.RateLimit, cfg.Burst)
	}
	return c, nil
}
