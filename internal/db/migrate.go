package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies every schema statement. Statements are idempotent so the
// full list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS history_imports (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		row_count   INTEGER NOT NULL CHECK(row_count >= 0),
		imported_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS historical_records (
		id               TEXT PRIMARY KEY,
		import_id        TEXT NOT NULL REFERENCES history_imports(id) ON DELETE CASCADE,
		grupo_titulacion TEXT NOT NULL DEFAULT '',
		curso            TEXT NOT NULL DEFAULT '',
		imported_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_historical_records_import ON historical_records(import_id)`,
}
