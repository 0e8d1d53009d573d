package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	// ErrDatabaseNotFound means the insights database has not been created yet.
	ErrDatabaseNotFound = errors.New("insights database not found")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrLearningNotFound is returned for an unknown learning id.
	ErrLearningNotFound = errors.New("learning not found")
)

// DefaultUnprocessedLimit caps how many sessions one extraction run picks up.
const DefaultUnprocessedLimit = 100

// sqliteTimeLayout is the format of SQLite's datetime('now').
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Store is a handle on the insights database.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens an existing insights database. A missing file yields
// ErrDatabaseNotFound; the file is never created.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, path)
		}
		return nil, fmt.Errorf("stat insights database: %w", err)
	}
	return open(ctx, path, logger)
}

// Create opens path, creating the file and any missing tables of Schema.
func Create(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := open(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening insights database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging insights database: %w", err)
	}
	return &Store{db: db, path: path, logger: logger}, nil
}

// DB exposes the underlying handle, mainly for fixtures.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanSession(sc interface{ Scan(...any) error }) (Session, error) {
	var (
		sess        Session
		projectPath sql.NullString
		summary     sql.NullString
		outcome     sql.NullString
	)
	if err := sc.Scan(&sess.ID, &projectPath, &summary, &outcome); err != nil {
		return Session{}, err
	}
	sess.ProjectPath = projectPath.String
	if summary.Valid {
		sess.Summary = &summary.String
	}
	if outcome.Valid {
		sess.Outcome = &outcome.String
	}
	return sess, nil
}

// Session returns one session by id.
func (s *Store) Session(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_path, summary, outcome FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return &sess, nil
}

// UnprocessedSessions returns up to limit sessions that have no learnings.
func (s *Store) UnprocessedSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = DefaultUnprocessedLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.project_path, s.summary, s.outcome
		FROM sessions s
		LEFT JOIN learnings l ON l.session_id = s.id
		WHERE l.id IS NULL
		GROUP BY s.id
		ORDER BY s.rowid
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unprocessed sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Detail loads everything recorded for a session. Events are in sequence order.
func (s *Store) Detail(ctx context.Context, sess Session) (*SessionDetail, error) {
	d := &SessionDetail{Session: sess}
	var err error

	if d.Events, err = s.events(ctx, sess.ID); err != nil {
		return nil, err
	}
	if d.ToolCalls, err = s.toolCalls(ctx, sess.ID); err != nil {
		return nil, err
	}
	if d.Errors, err = s.errorRecords(ctx, sess.ID); err != nil {
		return nil, err
	}
	if d.Skills, err = s.skills(ctx, sess.ID); err != nil {
		return nil, err
	}
	if d.SubAgents, err = s.subAgents(ctx, sess.ID); err != nil {
		return nil, err
	}
	if d.Modes, err = s.modes(ctx, sess.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, content, sequence_number
		FROM events WHERE session_id = ?
		ORDER BY sequence_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			content sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &content, &e.SequenceNumber); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Content = content.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) toolCalls(ctx context.Context, sessionID string) ([]ToolCall, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, tool_name, parameters
		FROM tool_calls WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer rows.Close()

	var out []ToolCall
	for rows.Next() {
		var (
			tc         ToolCall
			name       sql.NullString
			parameters sql.NullString
		)
		if err := rows.Scan(&tc.ID, &tc.SessionID, &name, &parameters); err != nil {
			return nil, fmt.Errorf("scanning tool call: %w", err)
		}
		tc.ToolName = name.String
		tc.Parameters = parameters.String
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (s *Store) errorRecords(ctx context.Context, sessionID string) ([]ErrorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, error_message
		FROM errors WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying errors: %w", err)
	}
	defer rows.Close()

	var out []ErrorRecord
	for rows.Next() {
		var (
			e   ErrorRecord
			msg sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &msg); err != nil {
			return nil, fmt.Errorf("scanning error: %w", err)
		}
		e.ErrorMessage = msg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) skills(ctx context.Context, sessionID string) ([]SkillInvocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, skill_name
		FROM skill_invocations WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying skill invocations: %w", err)
	}
	defer rows.Close()

	var out []SkillInvocation
	for rows.Next() {
		var (
			si   SkillInvocation
			name sql.NullString
		)
		if err := rows.Scan(&si.SessionID, &name); err != nil {
			return nil, fmt.Errorf("scanning skill invocation: %w", err)
		}
		si.SkillName = name.String
		out = append(out, si)
	}
	return out, rows.Err()
}

func (s *Store) subAgents(ctx context.Context, sessionID string) ([]SubAgentInvocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, task_description
		FROM sub_agent_invocations WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sub-agent invocations: %w", err)
	}
	defer rows.Close()

	var out []SubAgentInvocation
	for rows.Next() {
		var (
			sa   SubAgentInvocation
			desc sql.NullString
		)
		if err := rows.Scan(&sa.SessionID, &desc); err != nil {
			return nil, fmt.Errorf("scanning sub-agent invocation: %w", err)
		}
		sa.TaskDescription = desc.String
		out = append(out, sa)
	}
	return out, rows.Err()
}

func (s *Store) modes(ctx context.Context, sessionID string) (*Modes, error) {
	var m Modes
	err := s.db.QueryRowContext(ctx, `
		SELECT used_plan_mode, used_thinking, thinking_block_count
		FROM session_modes WHERE session_id = ?`, sessionID).
		Scan(&m.UsedPlanMode, &m.UsedThinking, &m.ThinkingBlockCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session modes: %w", err)
	}
	return &m, nil
}

// LearningTexts returns every learning id with its content.
func (s *Store) LearningTexts(ctx context.Context) ([]Text, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content FROM learnings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying learnings: %w", err)
	}
	defer rows.Close()

	var out []Text
	for rows.Next() {
		var t Text
		if err := rows.Scan(&t.ID, &t.Text); err != nil {
			return nil, fmt.Errorf("scanning learning: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SessionTranscripts returns, per session with at least one user or
// assistant message, the space-joined message contents in sequence order,
// truncated to maxChars characters (maxChars <= 0 disables truncation).
func (s *Store) SessionTranscripts(ctx context.Context, maxChars int) ([]Text, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.session_id, e.content
		FROM events e
		JOIN sessions s ON s.id = e.session_id
		WHERE e.type IN (?, ?) AND e.content IS NOT NULL
		ORDER BY s.rowid, e.sequence_number`, EventUserMessage, EventAssistantMessage)
	if err != nil {
		return nil, fmt.Errorf("querying session transcripts: %w", err)
	}
	defer rows.Close()

	var (
		out []Text
		cur strings.Builder
		id  string
	)
	flush := func() {
		if id != "" {
			out = append(out, Text{ID: id, Text: truncate(cur.String(), maxChars)})
		}
		cur.Reset()
	}
	for rows.Next() {
		var sessionID, content string
		if err := rows.Scan(&sessionID, &content); err != nil {
			return nil, fmt.Errorf("scanning transcript event: %w", err)
		}
		if sessionID != id {
			flush()
			id = sessionID
		} else {
			cur.WriteByte(' ')
		}
		cur.WriteString(content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// NewLearning is a learning to append for a session.
type NewLearning struct {
	Content      string
	Type         string
	Scope        string
	Confidence   float64
	Tags         []string
	RelatedFiles []string
}

// SaveExtraction appends learnings for sess and, when summary is non-nil,
// records the session summary and outcome. It returns the new learning ids.
func (s *Store) SaveExtraction(ctx context.Context, sess Session, learnings []NewLearning, summary *string, outcome string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(learnings))
	for _, l := range learnings {
		tags, err := json.Marshal(nonNil(l.Tags))
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		files, err := json.Marshal(nonNil(l.RelatedFiles))
		if err != nil {
			return nil, fmt.Errorf("encoding related files: %w", err)
		}
		id := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO learnings (id, session_id, project_path, content, type, scope, confidence, tags, related_files, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
			id, sess.ID, nullString(sess.ProjectPath), l.Content, l.Type, l.Scope, l.Confidence,
			string(tags), string(files), LearningSourceExtracted)
		if err != nil {
			return nil, fmt.Errorf("inserting learning: %w", err)
		}
		ids = append(ids, id)
	}

	if summary != nil && *summary != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET summary = ?, outcome = ? WHERE id = ?`,
			*summary, outcome, sess.ID); err != nil {
			return nil, fmt.Errorf("updating session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing extraction: %w", err)
	}
	return ids, nil
}

// Learning returns one stored learning.
func (s *Store) Learning(ctx context.Context, id string) (*LearningRow, error) {
	var (
		l                                  LearningRow
		sessionID, projectPath, typ, scope sql.NullString
		tags, files, source, createdAt     sql.NullString
		confidence                         sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, project_path, content, type, scope, confidence, tags, related_files, source, created_at
		FROM learnings WHERE id = ?`, id).
		Scan(&l.ID, &sessionID, &projectPath, &l.Content, &typ, &scope, &confidence, &tags, &files, &source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLearningNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying learning %s: %w", id, err)
	}

	l.SessionID = sessionID.String
	l.ProjectPath = projectPath.String
	l.Type = typ.String
	l.Scope = scope.String
	l.Confidence = confidence.Float64
	l.Source = source.String
	l.Tags = s.decodeList(tags.String, "tags", id)
	l.RelatedFiles = s.decodeList(files.String, "related_files", id)
	if createdAt.Valid {
		if t, err := time.Parse(sqliteTimeLayout, createdAt.String); err == nil {
			l.CreatedAt = t
		} else if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			l.CreatedAt = t
		}
	}
	return &l, nil
}

func (s *Store) decodeList(raw, column, id string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Warn("ignoring malformed learning column",
			zap.String("learning_id", id),
			zap.String("column", column),
			zap.Error(err))
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
