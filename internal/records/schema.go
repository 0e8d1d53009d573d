package records

// Schema is the subset of the insights database this package reads and
// writes. The indexer owns the real schema; Schema exists to bootstrap
// fixtures and empty databases.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	project_path TEXT,
	summary TEXT,
	outcome TEXT
);
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	type TEXT NOT NULL,
	content TEXT,
	sequence_number INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tool_calls (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	tool_name TEXT,
	parameters TEXT
);
CREATE TABLE IF NOT EXISTS errors (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	error_message TEXT
);
CREATE TABLE IF NOT EXISTS skill_invocations (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	skill_name TEXT
);
CREATE TABLE IF NOT EXISTS sub_agent_invocations (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	task_description TEXT
);
CREATE TABLE IF NOT EXISTS session_modes (
	session_id TEXT PRIMARY KEY,
	used_plan_mode INTEGER NOT NULL DEFAULT 0,
	used_thinking INTEGER NOT NULL DEFAULT 0,
	thinking_block_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS learnings (
	id TEXT PRIMARY KEY,
	session_id TEXT,
	project_path TEXT,
	content TEXT NOT NULL,
	type TEXT,
	scope TEXT,
	confidence REAL,
	tags TEXT,
	related_files TEXT,
	source TEXT,
	created_at TEXT
);
`
