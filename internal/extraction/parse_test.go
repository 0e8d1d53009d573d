package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "learnings": [
    {"content": "modernc sqlite needs _pragma=busy_timeout in the DSN", "type": "fix", "scope": "global", "confidence": 0.9, "tags": ["sqlite"], "related_files": ["store.go"]},
    {"content": "tests use testify", "type": "convention", "scope": "project", "confidence": 0.5}
  ],
  "session_summary": "Fixed locking errors",
  "session_outcome": "success"
}`

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"raw", `  {"a":1} `, `{"a":1}`},
		{"json fence", "Here you go:\n```json\n{\"a\":1}\n```\nDone.", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence preferred", "```\nnot this\n```\n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}

func TestParseReply_Valid(t *testing.T) {
	res := ParseReply(validReply)

	require.Len(t, res.Learnings, 2)
	first := res.Learnings[0]
	assert.Equal(t, TypeFix, first.Type)
	assert.Equal(t, ScopeGlobal, first.Scope)
	assert.Equal(t, 0.9, first.Confidence)
	assert.Equal(t, []string{"sqlite"}, first.Tags)
	assert.Equal(t, []string{"store.go"}, first.RelatedFiles)

	second := res.Learnings[1]
	assert.Equal(t, []string{}, second.Tags)
	assert.Equal(t, []string{}, second.RelatedFiles)

	require.NotNil(t, res.SessionSummary)
	assert.Equal(t, "Fixed locking errors", *res.SessionSummary)
	assert.Equal(t, OutcomeSuccess, res.SessionOutcome)
}

func TestParseReply_FencesParseIdentically(t *testing.T) {
	plain := ParseReply(validReply)
	assert.Equal(t, plain, ParseReply("```json\n"+validReply+"\n```"))
	assert.Equal(t, plain, ParseReply("Sure!\n```\n"+validReply+"\n```"))
}

func TestParseReply_Malformed(t *testing.T) {
	for _, reply := range []string{
		"",
		"I could not find anything worth extracting.",
		`{"learnings": [`,
		`[1, 2, 3]`,
		`"just a string"`,
		`{"session_summary": "no learnings key", "session_outcome": "success"}`,
	} {
		assert.Equal(t, EmptyResult(), ParseReply(reply), "reply %q", reply)
	}
}

func TestParseReply_DropsNonConformingItems(t *testing.T) {
	reply := `{"learnings": [
		{"content": "", "type": "fix", "scope": "global", "confidence": 0.9},
		{"content": "x", "type": "tip", "scope": "global", "confidence": 0.9},
		{"content": "x", "type": "fix", "scope": "team", "confidence": 0.9},
		{"content": "x", "type": "fix", "scope": "global", "confidence": "high"},
		{"content": "x", "type": "fix", "scope": "global", "confidence": 1.5},
		{"content": "x", "type": "fix", "scope": "global", "confidence": 0.9, "tags": "go"},
		{"content": "x", "type": "fix", "scope": "global", "confidence": 0.9, "related_files": [1]},
		{"type": "fix", "scope": "global", "confidence": 0.9},
		"not an object",
		{"content": "kept", "type": "antipattern", "scope": "language", "confidence": 0, "tags": null}
	], "session_summary": 42, "session_outcome": "great"}`

	res := ParseReply(reply)
	require.Len(t, res.Learnings, 1)
	assert.Equal(t, "kept", res.Learnings[0].Content)
	assert.Equal(t, []string{}, res.Learnings[0].Tags)
	assert.Nil(t, res.SessionSummary)
	assert.Equal(t, OutcomeUnknown, res.SessionOutcome)
}

func TestParseReply_NullSummary(t *testing.T) {
	res := ParseReply(`{"learnings": [], "session_summary": null, "session_outcome": "partial"}`)
	assert.Empty(t, res.Learnings)
	assert.Nil(t, res.SessionSummary)
	assert.Equal(t, OutcomePartial, res.SessionOutcome)
}

func TestFilterByConfidence(t *testing.T) {
	in := []Learning{
		{Content: "a", Confidence: 0.9},
		{Content: "b", Confidence: 0.5},
		{Content: "c", Confidence: 0.75},
		{Content: "d", Confidence: 0.7},
	}

	got := FilterByConfidence(in, 0.7)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{0.9, 0.75, 0.7}, []float64{got[0].Confidence, got[1].Confidence, got[2].Confidence})

	assert.Empty(t, FilterByConfidence(in, 0.95))
	assert.Len(t, FilterByConfidence(in, 0), 4)
}
