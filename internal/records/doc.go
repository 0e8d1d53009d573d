// Package records reads session transcripts from the insights database.
//
// The database is produced by the session indexer and is treated as an
// upstream source with a fixed row shape: sessions, events, tool calls,
// errors, skill and sub-agent invocations and session modes. The only writes
// are appending extracted learnings and recording a session's summary and
// outcome.
package records
