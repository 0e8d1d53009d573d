package extraction

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/agentinsights/internal/records"
)

// DefaultMaxContextChars bounds a session context document.
const DefaultMaxContextChars = 32000

const (
	maxFiles          = 20
	maxErrors         = 10
	maxErrorChars     = 200
	maxTools          = 10
	maxSubAgentTasks  = 3
	maxTaskChars      = 100
	maxMessageChars   = 1000
	conversationSlack = 500
)

// SessionData is the input of BuildContext.
type SessionData struct {
	Events           []records.Event
	ToolCalls        []records.ToolCall
	Errors           []records.ErrorRecord
	SkillInvocations []records.SkillInvocation
	SubAgents        []records.SubAgentInvocation
	Modes            *records.Modes
}

// SessionDataFrom adapts a stored session detail.
func SessionDataFrom(d *records.SessionDetail) SessionData {
	if d == nil {
		return SessionData{}
	}
	return SessionData{
		Events:           d.Events,
		ToolCalls:        d.ToolCalls,
		Errors:           d.Errors,
		SkillInvocations: d.Skills,
		SubAgents:        d.SubAgents,
		Modes:            d.Modes,
	}
}

// BuildContext renders a session into the plain-text document sent for
// extraction. Sections appear in a fixed order separated by blank lines and
// empty sections are omitted. Lengths are counted in runes.
//
// The other sections are cut at maxChars. The conversation is added last
// and only while it fits the budget they leave, so the result never exceeds
// maxChars. An empty session yields "".
func BuildContext(data SessionData, maxChars int) string {
	var parts []string

	if files := filesTouched(data.ToolCalls); len(files) > 0 {
		parts = append(parts, "Files touched: "+strings.Join(files, ", "))
	}

	if len(data.Errors) > 0 {
		errs := data.Errors
		if len(errs) > maxErrors {
			errs = errs[:maxErrors]
		}
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = "- " + truncateRunes(e.ErrorMessage, maxErrorChars)
		}
		parts = append(parts, "Errors:\n"+strings.Join(lines, "\n"))
	}

	if tools := toolHistogram(data.ToolCalls); len(tools) > 0 {
		parts = append(parts, "Tools: "+strings.Join(tools, ", "))
	}

	if skills := distinctSkills(data.SkillInvocations); len(skills) > 0 {
		parts = append(parts, "Skills used: "+strings.Join(skills, ", "))
	}

	if len(data.SubAgents) > 0 {
		parts = append(parts, fmt.Sprintf("Sub-agents spawned: %d", len(data.SubAgents)))
		for i, sa := range data.SubAgents {
			if i == maxSubAgentTasks {
				break
			}
			parts = append(parts, "  - Task: "+truncateRunes(sa.TaskDescription, maxTaskChars))
		}
	}

	if m := data.Modes; m != nil {
		var modes []string
		if m.UsedPlanMode {
			modes = append(modes, "plan mode")
		}
		if m.UsedThinking {
			modes = append(modes, fmt.Sprintf("thinking (%d blocks)", m.ThinkingBlockCount))
		}
		if len(modes) > 0 {
			parts = append(parts, "Modes: "+strings.Join(modes, ", "))
		}
	}

	parts = fitParts(parts, maxChars)

	used := 0
	for _, p := range parts {
		used += utf8.RuneCountInString(p)
	}
	limit := maxChars - used - conversationSlack

	var messages []string
	for _, ev := range data.Events {
		var role string
		switch ev.Type {
		case records.EventUserMessage:
			role = "User"
		case records.EventAssistantMessage:
			role = "Claude"
		default:
			continue
		}
		msg := "[" + role + "]: " + truncateRunes(ev.Content, maxMessageChars)
		// +1 for the newline joining messages.
		cost := utf8.RuneCountInString(msg) + 1
		if used+cost > limit {
			break
		}
		messages = append(messages, msg)
		used += cost
	}
	if len(messages) > 0 {
		parts = append(parts, "Conversation:\n"+strings.Join(messages, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// fitParts keeps parts while their joined length stays within maxChars. The
// part that crosses the limit is truncated and everything after it dropped.
func fitParts(parts []string, maxChars int) []string {
	used := 0
	for i, p := range parts {
		if i > 0 {
			used += 2
		}
		n := utf8.RuneCountInString(p)
		if used+n <= maxChars {
			used += n
			continue
		}
		if room := maxChars - used; room > 0 {
			return append(parts[:i], truncateRunes(p, room))
		}
		return parts[:i]
	}
	return parts
}

// filesTouched collects distinct string "path" parameters, sorted, capped.
func filesTouched(calls []records.ToolCall) []string {
	seen := map[string]bool{}
	for _, tc := range calls {
		if p := pathParam(tc.Parameters); p != "" {
			seen[p] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files
}

// pathParam decodes tool parameters, which may be a JSON object or a JSON
// string holding one, and returns their "path" value.
func pathParam(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ""
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return ""
		}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	p, _ := obj["path"].(string)
	return p
}

// toolHistogram renders "name(count)" entries by descending count. Ties keep
// first-seen order.
func toolHistogram(calls []records.ToolCall) []string {
	type toolCount struct {
		name  string
		count int
	}
	var counts []toolCount
	index := map[string]int{}
	for _, tc := range calls {
		name := tc.ToolName
		if name == "" {
			name = "unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(counts)
			index[name] = i
			counts = append(counts, toolCount{name: name})
		}
		counts[i].count++
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].count > counts[b].count })
	if len(counts) > maxTools {
		counts = counts[:maxTools]
	}
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = fmt.Sprintf("%s(%d)", c.name, c.count)
	}
	return out
}

func distinctSkills(invocations []records.SkillInvocation) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range invocations {
		if s.SkillName == "" || seen[s.SkillName] {
			continue
		}
		seen[s.SkillName] = true
		out = append(out, s.SkillName)
	}
	return out
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
