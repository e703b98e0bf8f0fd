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
		Name:    "create kv namespaces",
		SQL: `
			CREATE TABLE kv (
				namespace   TEXT PRIMARY KEY,
				value       TEXT NOT NULL,
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 2,
		Name:    "index kv by update time",
		SQL: `
			CREATE INDEX idx_kv_updated ON kv (updated_at);
		`,
	},
}
