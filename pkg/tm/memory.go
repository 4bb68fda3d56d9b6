package tm

import (
	"database/sql"
	"fmt"

	"github.com/Sunnie-Evergale/kurokin-tool/pkg/script"
)

// Harvest stores every translated entry of rec in the memory. Entries with
// no translation, or an empty one, are skipped. Returns the number of
// pairs written.
func Harvest(db *sql.DB, rec *script.FileRecord) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	stored := 0
	for _, n := range rec.LineNumbers() {
		for _, e := range rec.Lines[n] {
			if !e.Type.Translatable() || e.Translation == nil || *e.Translation == "" {
				continue
			}
			if _, err := UpsertTranslation(tx, string(e.Type), e.Original, *e.Translation); err != nil {
				return stored, fmt.Errorf("line %d: %w", n, err)
			}
			stored++
		}
	}
	if err := tx.Commit(); err != nil {
		return stored, err
	}
	return stored, nil
}

// Apply fills empty translation slots in rec from the memory, matching on
// (type, original) exactly. Slots that already hold a translation are
// never overwritten. Returns the number of slots filled.
func Apply(db *sql.DB, rec *script.FileRecord) (int, error) {
	filled := 0
	for _, n := range rec.LineNumbers() {
		for _, e := range rec.Lines[n] {
			if !e.Type.Translatable() {
				continue
			}
			if e.Translation != nil && *e.Translation != "" {
				continue
			}
			translation, found, err := LookupTranslation(db, string(e.Type), e.Original)
			if err != nil {
				return filled, fmt.Errorf("line %d: %w", n, err)
			}
			if !found {
				continue
			}
			t := translation
			e.Translation = &t
			filled++
		}
	}
	return filled, nil
}
