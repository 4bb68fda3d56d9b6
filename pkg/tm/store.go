package tm

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is satisfied by both *sql.DB and *sql.Tx so store functions
// can run standalone or inside a transaction.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MemoryEntry is one remembered translation keyed by entry type and
// original text.
type MemoryEntry struct {
	ID              int64
	EntryType       string
	Original        string
	Translation     string
	OccurrenceCount int
	FirstSeenAt     time.Time
}

// UpsertTranslation records a translation, bumping the occurrence count
// when the (type, original) pair is already known. The newest translation
// wins: re-imports of revised work should overwrite older renderings.
func UpsertTranslation(db DBExecutor, entryType, original, translation string) (int64, error) {
	if strings.TrimSpace(original) == "" {
		return 0, fmt.Errorf("original must be non-empty")
	}
	if strings.TrimSpace(translation) == "" {
		return 0, fmt.Errorf("translation must be non-empty")
	}
	var id int64
	query := `INSERT INTO memory (entry_type, original, translation)
			  VALUES (?, ?, ?)
			  ON CONFLICT(entry_type, original)
			  DO UPDATE SET
			    translation = excluded.translation,
			    occurrence_count = memory.occurrence_count + 1
			  RETURNING id`
	if err := db.QueryRow(query, entryType, original, translation).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert translation: %w", err)
	}
	return id, nil
}

// LookupTranslation returns the remembered translation for a (type,
// original) pair, or "" with found=false when the pair is unknown.
func LookupTranslation(db DBExecutor, entryType, original string) (string, bool, error) {
	var translation string
	err := db.QueryRow(
		`SELECT translation FROM memory WHERE entry_type = ? AND original = ?`,
		entryType, original,
	).Scan(&translation)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return translation, true, nil
}

// CountEntries returns the number of remembered pairs.
func CountEntries(db DBExecutor) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM memory`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
