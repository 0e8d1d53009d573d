// Package vectorstore persists embedding vectors and answers exact similarity
// queries over them.
//
// Vectors are partitioned by Kind (learnings, sessions) so a search never
// mixes unrelated entity types. Each kind is a table in a single SQLite file
// keyed by entity id, holding the vector as a fixed-width blob (see Encode).
//
// # Usage
//
//	store, err := vectorstore.Open(ctx, vectorstore.Config{Path: "~/.code-agent-insights/embeddings.db"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Put(ctx, vectorstore.KindLearning, id, vec); err != nil {
//	    return err
//	}
//	matches, err := store.Search(ctx, vectorstore.KindLearning, queryVec, 10)
//
// # Search
//
// Search is a linear scan: every vector of the kind is loaded, scored by dot
// product against the query and stable-sorted by descending score. Vectors
// are expected to be unit-normalized by the embedding provider, which makes
// the dot product equal to cosine similarity. The store never normalizes and
// never checks dimensions.
//
// There is no index. N (learnings or sessions for one user) is small enough
// that O(N·D) per query is fine.
package vectorstore
