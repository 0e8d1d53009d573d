// Package extraction turns a recorded coding-agent session into structured
// learnings.
//
// BuildContext renders a session's events, tool calls, errors and modes into
// a bounded plain-text document. An Extractor sends that document to a
// language model with a fixed instruction prompt, parses the JSON reply,
// validates every learning against the output schema and keeps only those
// whose confidence meets a threshold:
//
//	ex := extraction.NewExtractor(completer, extraction.WithLogger(logger))
//	doc := extraction.BuildContext(data, extraction.DefaultMaxContextChars)
//	res, err := ex.Extract(ctx, doc, extraction.DefaultMinConfidence)
//
// Model replies are untrusted. Malformed replies yield EmptyResult rather
// than an error, and non-conforming learnings are dropped one at a time.
package extraction
