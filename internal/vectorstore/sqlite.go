package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Config holds configuration for the SQLite vector store.
type Config struct {
	// Path is the database file. A leading ~ is expanded.
	// Default: "~/.code-agent-insights/embeddings.db"
	Path string
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.code-agent-insights/embeddings.db"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: path required", ErrInvalidConfig)
	}
	return nil
}

// table describes where a kind is persisted.
type table struct {
	name     string
	idColumn string
}

var kindTables = map[Kind]table{
	KindLearning: {name: "learning_embeddings", idColumn: "learning_id"},
	KindSession:  {name: "session_embeddings", idColumn: "session_id"},
}

func tableFor(kind Kind) (table, error) {
	t, ok := kindTables[kind]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t, nil
}

// SQLiteStore implements Store on a single SQLite file using the pure-Go
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens (creating if absent) the vector store file and applies the
// schema.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One owner, one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}

	s := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger,
	}

	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("vector store opened", zap.String("path", path))
	return s, nil
}

// Path returns the resolved database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// handle returns the open database or ErrStoreClosed.
func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.db, nil
}

// Put upserts the vector for (kind, id).
func (s *SQLiteStore) Put(ctx context.Context, kind Kind, id string, vector []float32) error {
	return s.PutBatch(ctx, kind, []Record{{ID: id, Vector: vector}})
}

// PutBatch upserts records in a single transaction. A later write for the
// same id replaces the earlier vector.
func (s *SQLiteStore) PutBatch(ctx context.Context, kind Kind, records []Record) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, embedding) VALUES (?, ?)", t.name, t.idColumn))
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.ID == "" {
			return ErrEmptyID
		}
		if _, err := stmt.ExecContext(ctx, r.ID, Encode(r.Vector)); err != nil {
			return fmt.Errorf("upserting %s %s: %w", kind, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}

	vectorsWritten.WithLabelValues(string(kind)).Add(float64(len(records)))
	return nil
}

// Search scores every stored vector of kind by dot product with query and
// returns the best limit matches in descending score order. Equal scores
// keep table order (rowid), so results are deterministic for a given file.
func (s *SQLiteStore) Search(ctx context.Context, kind Kind, query []float32, limit int) ([]Match, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	matches := []Match{}
	if limit <= 0 {
		return matches, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s, embedding FROM %s ORDER BY rowid", t.idColumn, t.name))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("reading %s row: %w", t.name, err)
		}
		if len(blob)%bytesPerFloat != 0 {
			s.logger.Warn("skipping malformed embedding blob",
				zap.String("kind", string(kind)),
				zap.String("id", id),
				zap.Int("bytes", len(blob)),
			)
			continue
		}
		matches = append(matches, Match{ID: id, Score: Dot(query, Decode(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.name, err)
	}

	scanned := len(matches)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	searchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	vectorsScanned.WithLabelValues(string(kind)).Observe(float64(scanned))

	s.logger.Debug("vector search",
		zap.String("kind", string(kind)),
		zap.Int("scanned", scanned),
		zap.Int("returned", len(matches)),
		zap.Duration("duration", time.Since(start)),
	)
	return matches, nil
}

// Count returns the number of vectors stored for kind.
func (s *SQLiteStore) Count(ctx context.Context, kind Kind) (int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.name, err)
	}
	storedVectors.WithLabelValues(string(kind)).Set(float64(n))
	return n, nil
}

// Close closes the database. Subsequent calls return nil.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.path, err)
	}
	s.logger.Debug("vector store closed", zap.String("path", s.path))
	return nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

var _ Store = (*SQLiteStore)(nil)
