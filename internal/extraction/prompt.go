package extraction

// PromptVersion identifies SystemPrompt. Bump it whenever the prompt text
// changes so stored learnings can be traced to the instructions that
// produced them.
const PromptVersion = "v1"

// userPrefix precedes the session context in the user message.
const userPrefix = "Extract learnings:\n\n"

// SystemPrompt instructs the model what to extract and which JSON shape to
// reply with.
const SystemPrompt = `You extract HIGH-VALUE learnings from coding agent sessions. Be very selective.

ONLY extract learnings that meet ALL criteria:
1. SPECIFIC: Contains exact error messages, tool names, file patterns, or code snippets
2. ACTIONABLE: Someone could directly apply this to solve a future problem
3. NON-OBVIOUS: A senior developer wouldn't already know this
4. TRANSFERABLE: Useful beyond just this one session

DO NOT extract:
- Project descriptions or file paths (e.g., "Project is at /Users/...")
- Session metadata (token counts, model names, context usage)
- Generic best practices ("use version control", "monitor logs", "test your code")
- Descriptions of what the AI agent did ("Agent proactively offered...", "Claude searched for...")
- Workflow descriptions ("User uses warmup command...")
- Duplicate or near-duplicate insights

PREFER:
- Bug fixes with root cause AND solution
- Non-obvious tool/API behaviors discovered through debugging
- Project-specific conventions that differ from defaults
- Workarounds for framework/library quirks

Output valid JSON only:
{
  "learnings": [
    {
      "content": "Specific, actionable learning with concrete details",
      "type": "fix|pattern|antipattern|convention|preference",
      "scope": "global|project|language",
      "confidence": 0.0-1.0,
      "tags": ["specific", "keywords"],
      "related_files": []
    }
  ],
  "session_summary": "One sentence summary of task accomplished",
  "session_outcome": "success|partial|failure"
}

Aim for 2-5 high-quality learnings per session, not 10+ mediocre ones. It's better to extract nothing than to extract noise.`

// UserMessage wraps a session context in the extraction request.
func UserMessage(sessionContext string) string {
	return userPrefix + sessionContext
}
