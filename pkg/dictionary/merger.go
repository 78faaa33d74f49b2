package dictionary

import (
	"database/sql"
	"fmt"

	"github.com/jmhart/lexiread/pkg/db"
)

// Merger folds decoded chunk records into the live word store.
type Merger struct {
	DB *sql.DB
}

// Dedupe removes duplicate records by lookup key, keeping the first
// occurrence and preserving order. Chunks are frequency-ordered, so the
// first record seen for a key is the more authoritative one.
func Dedupe(records []*db.WordRecord) []*db.WordRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0:0]
	for _, r := range records {
		if seen[r.WordLower] {
			continue
		}
		seen[r.WordLower] = true
		out = append(out, r)
	}
	return out
}

// Merge dedupes a batch of records and inserts them into the live store in a
// single transaction, so a chunk's words become queryable all at once.
// Returns the number of rows written.
func (m *Merger) Merge(records []*db.WordRecord) (int, error) {
	records = Dedupe(records)

	tx, err := m.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, r := range records {
		if err := db.UpsertWord(tx, r); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge tx: %w", err)
	}
	return len(records), nil
}
