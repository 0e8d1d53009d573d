package extraction

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// stripFence returns the body of a ```json block if text has one, else the
// body of the first untagged ``` block, else text. The result is trimmed.
func stripFence(text string) string {
	if _, after, ok := strings.Cut(text, fence+"json"); ok {
		body, _, _ := strings.Cut(after, fence)
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(text, fence); ok {
		body, _, _ := strings.Cut(after, fence)
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(text)
}

// ParseReply interprets a model reply. It never fails: a reply that is not a
// JSON object with a "learnings" key yields EmptyResult, and learnings that
// do not match the output schema are dropped individually. No confidence
// threshold is applied here.
func ParseReply(text string) *Result {
	var raw any
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		return EmptyResult()
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return EmptyResult()
	}
	items, ok := obj["learnings"]
	if !ok {
		return EmptyResult()
	}

	res := EmptyResult()
	if list, ok := items.([]any); ok {
		for _, item := range list {
			if l, ok := parseLearning(item); ok {
				res.Learnings = append(res.Learnings, l)
			}
		}
	}
	if s, ok := obj["session_summary"].(string); ok {
		res.SessionSummary = &s
	}
	if s, ok := obj["session_outcome"].(string); ok {
		switch o := Outcome(s); o {
		case OutcomeSuccess, OutcomePartial, OutcomeFailure:
			res.SessionOutcome = o
		}
	}
	return res
}

func parseLearning(item any) (Learning, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Learning{}, false
	}

	content, ok := obj["content"].(string)
	if !ok || strings.TrimSpace(content) == "" {
		return Learning{}, false
	}
	typ, _ := obj["type"].(string)
	if !LearningType(typ).Valid() {
		return Learning{}, false
	}
	scope, _ := obj["scope"].(string)
	if !Scope(scope).Valid() {
		return Learning{}, false
	}
	conf, ok := obj["confidence"].(float64)
	if !ok || conf < 0 || conf > 1 {
		return Learning{}, false
	}
	tags, ok := stringList(obj["tags"])
	if !ok {
		return Learning{}, false
	}
	files, ok := stringList(obj["related_files"])
	if !ok {
		return Learning{}, false
	}

	return Learning{
		Content:      content,
		Type:         LearningType(typ),
		Scope:        Scope(scope),
		Confidence:   conf,
		Tags:         tags,
		RelatedFiles: files,
	}, true
}

// stringList accepts an absent or null value as empty, and otherwise only an
// array whose elements are all strings.
func stringList(v any) ([]string, bool) {
	if v == nil {
		return []string{}, true
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// FilterByConfidence keeps learnings with Confidence >= min, in order.
func FilterByConfidence(learnings []Learning, min float64) []Learning {
	out := make([]Learning, 0, len(learnings))
	for _, l := range learnings {
		if l.Confidence >= min {
			out = append(out, l)
		}
	}
	return out
}
