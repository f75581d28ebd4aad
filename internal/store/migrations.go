package store

// Migration represents a schema migration
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// GetSQLiteMigrations returns SQLite migrations in order
func GetSQLiteMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create entity tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS actions (
					key TEXT PRIMARY KEY,
					chain_id INTEGER NOT NULL,
					document TEXT NOT NULL,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
				CREATE TABLE IF NOT EXISTS gardens (
					key TEXT PRIMARY KEY,
					chain_id INTEGER NOT NULL,
					document TEXT NOT NULL,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
				CREATE TABLE IF NOT EXISTS gardeners (
					key TEXT PRIMARY KEY,
					chain_id INTEGER NOT NULL,
					document TEXT NOT NULL,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create chain indexes",
			SQL: `
				CREATE INDEX IF NOT EXISTS idx_actions_chain ON actions(chain_id);
				CREATE INDEX IF NOT EXISTS idx_gardens_chain ON gardens(chain_id);
				CREATE INDEX IF NOT EXISTS idx_gardeners_chain ON gardeners(chain_id);
			`,
		},
	}
}

// GetPostgresMigrations returns PostgreSQL migrations in order
func GetPostgresMigrations() []*Migration {
	return []*Migration{
		{
			Version:     "001",
			Description: "Create entity tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS actions (
					key TEXT PRIMARY KEY,
					chain_id BIGINT NOT NULL,
					document JSONB NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE TABLE IF NOT EXISTS gardens (
					key TEXT PRIMARY KEY,
					chain_id BIGINT NOT NULL,
					document JSONB NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE TABLE IF NOT EXISTS gardeners (
					key TEXT PRIMARY KEY,
					chain_id BIGINT NOT NULL,
					document JSONB NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     "002",
			Description: "Create chain indexes",
			SQL: `
				CREATE INDEX IF NOT EXISTS idx_actions_chain ON actions(chain_id);
				CREATE INDEX IF NOT EXISTS idx_gardens_chain ON gardens(chain_id);
				CREATE INDEX IF NOT EXISTS idx_gardeners_chain ON gardeners(chain_id);
			`,
		},
	}
}
