package vectorstore

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for vector store operations.
var (
	// ErrUnknownKind is returned for a kind with no backing table.
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("vector store closed")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyID is returned when a record has no entity id.
	ErrEmptyID = errors.New("entity id required")
)

// Kind partitions the store by entity type.
type Kind string

const (
	// KindLearning holds embeddings of extracted learnings.
	KindLearning Kind = "learning"
	// KindSession holds embeddings of session transcripts.
	KindSession Kind = "session"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindLearning, KindSession}
}

// ParseKind converts a user-supplied name ("learning", "learnings",
// "session", "sessions") into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "learning", "learnings":
		return KindLearning, nil
	case "session", "sessions":
		return KindSession, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Record is one embedding keyed by entity id.
type Record struct {
	ID     string
	Vector []float32
}

// Match is a search hit.
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Store is the persistent id -> vector mapping.
//
// Implementations are used by a single process; callers must not mix vector
// dimensions within one kind.
type Store interface {
	// Put upserts the vector for (kind, id).
	Put(ctx context.Context, kind Kind, id string, vector []float32) error

	// PutBatch upserts a group of records of one kind atomically.
	PutBatch(ctx context.Context, kind Kind, records []Record) error

	// Search scores every vector of kind against query and returns the top
	// limit matches, highest score first. An empty kind yields an empty
	// slice and a nil error.
	Search(ctx context.Context, kind Kind, query []float32, limit int) ([]Match, error)

	// Count returns how many vectors are stored for kind.
	Count(ctx context.Context, kind Kind) (int, error)

	// Close releases the underlying handle. It is safe to call twice.
	Close() error
}
