package records

import "time"

// Event types that carry conversation text.
const (
	EventUserMessage      = "user_message"
	EventAssistantMessage = "assistant_message"
)

// Session is one indexed assistant session.
type Session struct {
	ID          string
	ProjectPath string
	Summary     *string
	Outcome     *string
}

// Event is one entry of a session transcript.
type Event struct {
	ID             string
	SessionID      string
	Type           string
	Content        string
	SequenceNumber int
}

// ToolCall is a tool invocation. Parameters holds the raw JSON text as stored.
type ToolCall struct {
	ID         string
	SessionID  string
	ToolName   string
	Parameters string
}

// ErrorRecord is an error surfaced during a session.
type ErrorRecord struct {
	ID           string
	SessionID    string
	ErrorMessage string
}

// SkillInvocation records a skill used in a session.
type SkillInvocation struct {
	SessionID string
	SkillName string
}

// SubAgentInvocation records a spawned sub-agent.
type SubAgentInvocation struct {
	SessionID       string
	TaskDescription string
}

// Modes captures per-session mode flags.
type Modes struct {
	UsedPlanMode       bool
	UsedThinking       bool
	ThinkingBlockCount int
}

// SessionDetail bundles everything recorded for one session.
type SessionDetail struct {
	Session   Session
	Events    []Event
	ToolCalls []ToolCall
	Errors    []ErrorRecord
	Skills    []SkillInvocation
	SubAgents []SubAgentInvocation
	Modes     *Modes
}

// LearningSourceExtracted marks learnings produced by model extraction.
const LearningSourceExtracted = "extracted"

// LearningRow is a stored learning.
type LearningRow struct {
	ID           string
	SessionID    string
	ProjectPath  string
	Content      string
	Type         string
	Scope        string
	Confidence   float64
	Tags         []string
	RelatedFiles []string
	Source       string
	CreatedAt    time.Time
}

// Text is an entity id paired with the text to embed for it.
type Text struct {
	ID   string
	Text string
}
