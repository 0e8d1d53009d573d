package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/agentinsights/internal/llm"
	"github.com/fyrsmithlabs/agentinsights/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// stubCompleter records the request and answers with reply or err.
type stubCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system, s.user = system, user
	return s.reply, s.err
}

const mixedConfidenceReply = "```json\n" + `{
  "learnings": [
    {"content": "a", "type": "fix", "scope": "global", "confidence": 0.9},
    {"content": "b", "type": "fix", "scope": "global", "confidence": 0.5},
    {"content": "c", "type": "pattern", "scope": "project", "confidence": 0.75}
  ],
  "session_summary": "did things",
  "session_outcome": "partial"
}` + "\n```"

func TestExtractor_Extract(t *testing.T) {
	stub := &stubCompleter{reply: mixedConfidenceReply}
	ex := NewExtractor(stub)

	res, err := ex.Extract(context.Background(), "Conversation:\n[User]: hi", DefaultMinConfidence)
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, SystemPrompt, stub.system)
	assert.Equal(t, "Extract learnings:\n\nConversation:\n[User]: hi", stub.user)

	require.Len(t, res.Learnings, 2)
	assert.Equal(t, 0.9, res.Learnings[0].Confidence)
	assert.Equal(t, 0.75, res.Learnings[1].Confidence)
	require.NotNil(t, res.SessionSummary)
	assert.Equal(t, "did things", *res.SessionSummary)
	assert.Equal(t, OutcomePartial, res.SessionOutcome)
}

func TestExtractor_MalformedReply(t *testing.T) {
	ex := NewExtractor(&stubCompleter{reply: "Sorry, nothing to report."})

	res, err := ex.Extract(context.Background(), "ctx", DefaultMinConfidence)
	require.NoError(t, err)
	assert.Equal(t, EmptyResult(), res)
}

func TestExtractor_CompletionError(t *testing.T) {
	cause := errors.New("connection refused")
	ex := NewExtractor(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", cause
	}))

	res, err := ex.Extract(context.Background(), "ctx", DefaultMinConfidence)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrCompletion)
	assert.ErrorIs(t, err, cause)
}

func TestExtractor_SecretScrubbing(t *testing.T) {
	secret := "sk-ant-api03-" + strings.Repeat("z", 30)
	sessionContext := "Conversation:\n[User]: my key is " + secret

	stub := &stubCompleter{reply: `{"learnings": []}`}
	_, err := NewExtractor(stub).Extract(context.Background(), sessionContext, DefaultMinConfidence)
	require.NoError(t, err)
	assert.NotContains(t, stub.user, secret)
	assert.Contains(t, stub.user, "[REDACTED:ANTHROPIC_KEY]")

	stub = &stubCompleter{reply: `{"learnings": []}`}
	_, err = NewExtractor(stub, WithSecretScrubbing(false)).Extract(context.Background(), sessionContext, DefaultMinConfidence)
	require.NoError(t, err)
	assert.Contains(t, stub.user, secret)
}

func TestExtractor_TagInference(t *testing.T) {
	stub := &stubCompleter{reply: `{"learnings": [
		{"content": "go test -count=1 bypasses the cache", "type": "pattern", "scope": "language", "confidence": 0.8},
		{"content": "tagged already", "type": "fix", "scope": "global", "confidence": 0.8, "tags": ["keep"]}
	]}`}

	res, err := NewExtractor(stub, WithTagInference(NewTagger(nil))).Extract(context.Background(), "ctx", 0.7)
	require.NoError(t, err)
	require.Len(t, res.Learnings, 2)
	assert.Contains(t, res.Learnings[0].Tags, "golang")
	assert.Equal(t, []string{"keep"}, res.Learnings[1].Tags)
}

func TestExtractor_LogsAndMetrics(t *testing.T) {
	logs := logging.NewTestLogger()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := newMetrics(mp.Meter(instrumentationName), zap.NewNop())

	ex := NewExtractor(&stubCompleter{reply: mixedConfidenceReply},
		WithLogger(logs.Underlying()), WithMetrics(m))
	_, err := ex.Extract(context.Background(), "ctx", DefaultMinConfidence)
	require.NoError(t, err)

	logs.AssertField(t, "extraction finished", "kept", int64(2))
	logs.AssertField(t, "extraction finished", "prompt_version", PromptVersion)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			sum, ok := mt.Data.(metricdata.Sum[int64])
			if !ok || mt.Name != "cai.extraction.learnings_total" {
				continue
			}
			for _, dp := range sum.DataPoints {
				stage, _ := dp.Attributes.Value(attribute.Key("stage"))
				counts[stage.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"parsed": 3, "kept": 2}, counts)
}
