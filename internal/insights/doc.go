// Package insights orchestrates the three offline flows over a recorded
// session database: bulk embedding of learnings and session transcripts,
// learning extraction from unprocessed sessions, and semantic search over
// the stored embeddings.
//
// All flows are synchronous. Embedding proceeds chunk by chunk, persisting
// each chunk before the next is embedded, and reports progress through a
// callback. Extraction skips sessions whose model call fails and carries on
// with the rest.
package insights
