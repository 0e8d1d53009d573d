package insights

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/agentinsights/internal/extraction"
	"github.com/fyrsmithlabs/agentinsights/internal/records"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

// Defaults for zero-valued options.
const (
	DefaultBatchSize       = 32
	DefaultTranscriptChars = 10000
	DefaultSearchLimit     = 10
)

var (
	// ErrNoTarget is returned by Extract when neither a session id nor All
	// was requested.
	ErrNoTarget = errors.New("insights: specify a session id or all unprocessed sessions")

	// ErrEmbeddingMismatch is returned when a provider returns a different
	// number of vectors than texts, or a vector whose length differs from
	// its Dimension.
	ErrEmbeddingMismatch = errors.New("insights: embedding mismatch")
)

// RecordSource is the subset of the session database the flows use.
type RecordSource interface {
	Session(ctx context.Context, id string) (*records.Session, error)
	UnprocessedSessions(ctx context.Context, limit int) ([]records.Session, error)
	Detail(ctx context.Context, sess records.Session) (*records.SessionDetail, error)
	LearningTexts(ctx context.Context) ([]records.Text, error)
	SessionTranscripts(ctx context.Context, maxChars int) ([]records.Text, error)
	SaveExtraction(ctx context.Context, sess records.Session, learnings []records.NewLearning, summary *string, outcome string) ([]string, error)
	Learning(ctx context.Context, id string) (*records.LearningRow, error)
}

// Extractor turns a session context document into learnings.
type Extractor interface {
	Extract(ctx context.Context, sessionContext string, minConfidence float64) (*extraction.Result, error)
}

// Progress reports how many texts of a kind have been embedded and stored.
type Progress struct {
	Kind  vectorstore.Kind
	Done  int
	Total int
}

// EmbedOptions configures Embed.
type EmbedOptions struct {
	// Kinds to embed; empty means every kind.
	Kinds     []vectorstore.Kind
	BatchSize int
	// TranscriptChars truncates session transcripts before embedding.
	TranscriptChars int
	// Progress, when set, is called after every stored chunk.
	Progress func(Progress)
}

// EmbedResult counts stored vectors per kind.
type EmbedResult struct {
	Embedded map[vectorstore.Kind]int
	// Skipped counts blank texts that were not embedded.
	Skipped map[vectorstore.Kind]int
}

// ExtractOptions configures Extract.
type ExtractOptions struct {
	SessionID string
	All       bool
	// Limit caps how many unprocessed sessions All picks up.
	Limit           int
	MinConfidence   float64
	MaxContextChars int
	// OnStart, when set, is called with the number of target sessions before
	// the first one is handled. It is not called when there are none.
	OnStart func(sessions int)
	// OnSession, when set, is called once per session after it is handled.
	OnSession func(SessionReport)
}

// SessionReport describes the outcome for one session.
type SessionReport struct {
	SessionID   string
	LearningIDs []string
	// Skipped is set for sessions with nothing to send to the model.
	Skipped bool
	Err     error
}

// ExtractResult summarises an extraction run.
type ExtractResult struct {
	Sessions  int
	Processed int
	Skipped   int
	Failed    int
	Learnings int
}

// SearchOptions configures Search.
type SearchOptions struct {
	Kind  vectorstore.Kind
	Query string
	Limit int
}

// Hit is one search result. Learning is set for learning searches, Session
// for session searches.
type Hit struct {
	ID       string
	Score    float64
	Learning *records.LearningRow
	Session  *records.Session
}
