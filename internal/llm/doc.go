// Package llm is the language-model boundary used by extraction.
//
// A Completer sends one system instruction and one user turn and returns the
// reply text. Anthropic (anthropic-sdk-go) and OpenAI-compatible (langchaingo)
// backends are provided, plus a token-bucket RateLimited decorator. Completers
// never retry; the caller decides what a failure means.
package llm
