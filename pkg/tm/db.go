package tm

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS memory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_type TEXT NOT NULL,
	original TEXT NOT NULL,
	translation TEXT NOT NULL,
	occurrence_count INTEGER NOT NULL DEFAULT 1,
	first_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(entry_type, original)
);
CREATE INDEX IF NOT EXISTS idx_memory_original ON memory(original);
`

// Open opens (creating if needed) a translation-memory database and runs
// the schema migration.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// InitDB applies the embedded schema. The full SQL batch is handed to
// SQLite in one Exec so statement splitting is its problem, not ours.
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	_, err := db.Exec(migrationsSQL)
	return err
}
