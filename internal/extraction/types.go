package extraction

// LearningType classifies a learning.
type LearningType string

const (
	TypeFix         LearningType = "fix"
	TypePattern     LearningType = "pattern"
	TypeAntipattern LearningType = "antipattern"
	TypeConvention  LearningType = "convention"
	TypePreference  LearningType = "preference"
)

// Valid reports whether t is one of the known learning types.
func (t LearningType) Valid() bool {
	switch t {
	case TypeFix, TypePattern, TypeAntipattern, TypeConvention, TypePreference:
		return true
	}
	return false
}

// Scope states how widely a learning applies.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeProject  Scope = "project"
	ScopeLanguage Scope = "language"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeProject, ScopeLanguage:
		return true
	}
	return false
}

// Outcome is the model's verdict on how the session went.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// Learning is one validated item of a model reply.
type Learning struct {
	Content      string       `json:"content"`
	Type         LearningType `json:"type"`
	Scope        Scope        `json:"scope"`
	Confidence   float64      `json:"confidence"`
	Tags         []string     `json:"tags"`
	RelatedFiles []string     `json:"related_files"`
}

// Result is the parsed outcome of one extraction.
type Result struct {
	Learnings      []Learning `json:"learnings"`
	SessionSummary *string    `json:"session_summary"`
	SessionOutcome Outcome    `json:"session_outcome"`
}

// EmptyResult is returned for replies that cannot be interpreted.
func EmptyResult() *Result {
	return &Result{Learnings: []Learning{}, SessionOutcome: OutcomeUnknown}
}
