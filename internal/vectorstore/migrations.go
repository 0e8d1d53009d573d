package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// migration is one versioned schema step.
type migration struct {
	version int
	name    string
	up      func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, name: "embedding_tables", up: migrateEmbeddingTables},
}

// runMigrations applies every migration newer than the recorded version.
func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		s.logger.Info("applying vector store migration",
			zap.Int("version", m.version),
			zap.String("name", m.name),
		)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := m.up(ctx, tx); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

// migrateEmbeddingTables creates one table per kind. The layout matches
// files written by earlier releases of the extractor, so existing
// embeddings.db files open without conversion.
func migrateEmbeddingTables(ctx context.Context, tx *sql.Tx) error {
	for _, kind := range Kinds() {
		t := kindTables[kind]
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s TEXT PRIMARY KEY,
				embedding BLOB NOT NULL
			)
		`, t.name, t.idColumn)); err != nil {
			return fmt.Errorf("creating %s: %w", t.name, err)
		}
	}
	return nil
}
