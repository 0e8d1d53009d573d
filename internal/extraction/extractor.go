package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/agentinsights/internal/llm"
	"go.uber.org/zap"
)

// DefaultMinConfidence is the confidence threshold applied by callers that
// do not choose their own.
const DefaultMinConfidence = 0.7

// ErrCompletion wraps failures of the completion request. The caller
// should skip the session and move on.
var ErrCompletion = errors.New("extraction: completion failed")

// Option configures an Extractor.
type Option func(*Extractor)

// WithSecretScrubbing toggles redaction of secrets in the context before it
// is sent. Enabled by default.
func WithSecretScrubbing(enabled bool) Option {
	return func(e *Extractor) { e.scrub = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records extraction metrics to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithTagInference fills in keyword-derived tags for learnings that came
// back without any. Disabled by default.
func WithTagInference(t *Tagger) Option {
	return func(e *Extractor) { e.tagger = t }
}

// Extractor runs the extraction pipeline against one Completer.
type Extractor struct {
	completer llm.Completer
	scrub     bool
	tagger    *Tagger
	logger    *zap.Logger
	metrics   *Metrics
}

// NewExtractor creates an Extractor.
func NewExtractor(completer llm.Completer, opts ...Option) *Extractor {
	e := &Extractor{
		completer: completer,
		scrub:     true,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract sends sessionContext to the model once, parses and validates the
// reply and keeps learnings with confidence >= minConfidence. A reply that
// cannot be interpreted yields EmptyResult and no error.
func (e *Extractor) Extract(ctx context.Context, sessionContext string, minConfidence float64) (*Result, error) {
	if e.scrub {
		scrubbed, err := ScrubSecrets(sessionContext)
		if err != nil {
			e.logger.Warn("secret detector unavailable, using pattern rules only", zap.Error(err))
		}
		sessionContext = scrubbed
	}

	start := time.Now()
	reply, err := e.completer.Complete(ctx, SystemPrompt, UserMessage(sessionContext))
	if err != nil {
		e.metrics.recordFailure(ctx, time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	res := ParseReply(reply)
	parsed := len(res.Learnings)
	if e.tagger != nil {
		for i := range res.Learnings {
			l := &res.Learnings[i]
			if len(l.Tags) == 0 {
				l.Tags = e.tagger.Infer(l.Content, l.RelatedFiles)
			}
		}
	}
	res.Learnings = FilterByConfidence(res.Learnings, minConfidence)
	e.metrics.recordSuccess(ctx, time.Since(start), parsed, len(res.Learnings))

	e.logger.Debug("extraction finished",
		zap.String("prompt_version", PromptVersion),
		zap.Int("context_chars", len(sessionContext)),
		zap.Int("parsed", parsed),
		zap.Int("kept", len(res.Learnings)),
		zap.String("outcome", string(res.SessionOutcome)),
		zap.Duration("duration", time.Since(start)))
	if parsed == 0 && res.SessionOutcome == OutcomeUnknown {
		e.logger.Debug("reply carried no usable learnings", zap.Int("reply_chars", len(reply)))
	}
	return res, nil
}
