package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create fitness plans",
		SQL: `
			CREATE TABLE fitness_plans (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id        TEXT NOT NULL,
				session_id     TEXT NOT NULL DEFAULT '',
				plan_name      TEXT NOT NULL,
				plan_type      TEXT NOT NULL,
				plan_data      TEXT NOT NULL,
				goals          TEXT NOT NULL DEFAULT '',
				duration_weeks INTEGER NOT NULL DEFAULT 12,
				created_at     TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_plans_user ON fitness_plans (user_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create chat sessions and messages",
		SQL: `
			CREATE TABLE chat_sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				title      TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_sessions_user ON chat_sessions (user_id);

			CREATE TABLE chat_messages (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
				role       TEXT NOT NULL,
				content    TEXT NOT NULL,
				timestamp  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_session ON chat_messages (session_id, id);
		`,
	},
}
