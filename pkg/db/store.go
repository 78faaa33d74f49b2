package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

const wordColumns = `word, word_lower, phonetic, definition, translation, pos, collins, oxford, tag, bnc, frq, exchange, detail, audio`

// UpsertWord inserts a word record or replaces the existing record with the
// same word_lower key.
func UpsertWord(ex DBExecutor, r *WordRecord) error {
	if strings.TrimSpace(r.Word) == "" {
		return fmt.Errorf("word must be non-empty")
	}
	lower := r.WordLower
	if lower == "" {
		lower = LowerWord(r.Word)
	}
	oxford := 0
	if r.Oxford {
		oxford = 1
	}
	_, err := ex.Exec(`INSERT INTO words (`+wordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(word_lower) DO UPDATE SET
			word = excluded.word,
			phonetic = COALESCE(NULLIF(excluded.phonetic, ''), words.phonetic),
			definition = COALESCE(NULLIF(excluded.definition, ''), words.definition),
			translation = COALESCE(NULLIF(excluded.translation, ''), words.translation),
			pos = COALESCE(NULLIF(excluded.pos, ''), words.pos),
			collins = excluded.collins,
			oxford = excluded.oxford,
			tag = COALESCE(NULLIF(excluded.tag, ''), words.tag),
			bnc = excluded.bnc,
			frq = excluded.frq,
			exchange = COALESCE(NULLIF(excluded.exchange, ''), words.exchange),
			detail = COALESCE(NULLIF(excluded.detail, ''), words.detail),
			audio = COALESCE(NULLIF(excluded.audio, ''), words.audio)`,
		r.Word, lower, r.Phonetic, r.Definition, r.Translation, r.PartOfSpeech,
		r.Collins, oxford, r.Tag, r.BNC, r.Frq, r.Exchange, r.Detail, r.Audio)
	if err != nil {
		return fmt.Errorf("upsert word %s: %w", r.Word, err)
	}
	return nil
}

func scanWord(scan func(dest ...interface{}) error) (*WordRecord, error) {
	var r WordRecord
	var oxford int
	err := scan(&r.Word, &r.WordLower, &r.Phonetic, &r.Definition, &r.Translation,
		&r.PartOfSpeech, &r.Collins, &oxford, &r.Tag, &r.BNC, &r.Frq,
		&r.Exchange, &r.Detail, &r.Audio)
	if err != nil {
		return nil, err
	}
	r.Oxford = oxford != 0
	return &r, nil
}

// GetWordByLower looks a word up by its lookup key. A missing word is not an
// error; it returns (nil, nil).
func GetWordByLower(ex DBExecutor, lower string) (*WordRecord, error) {
	row := ex.QueryRow(`SELECT `+wordColumns+` FROM words WHERE word_lower = ?`, lower)
	r, err := scanWord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query word %s: %w", lower, err)
	}
	return r, nil
}

// maxBatchParams bounds the number of placeholders per IN query; sqlite caps
// bound parameters at 999 by default.
const maxBatchParams = 500

// GetWordsByLower looks up many keys at once, returning a map with one entry
// per found key. Missing keys are simply absent from the result.
func GetWordsByLower(ex DBExecutor, lowers []string) (map[string]*WordRecord, error) {
	out := make(map[string]*WordRecord, len(lowers))
	for start := 0; start < len(lowers); start += maxBatchParams {
		end := start + maxBatchParams
		if end > len(lowers) {
			end = len(lowers)
		}
		batch := lowers[start:end]
		placeholders := strings.Repeat("?,", len(batch)-1) + "?"
		args := make([]interface{}, len(batch))
		for i, w := range batch {
			args[i] = w
		}
		rows, err := ex.Query(`SELECT `+wordColumns+` FROM words WHERE word_lower IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("batch query words: %w", err)
		}
		for rows.Next() {
			r, err := scanWord(rows.Scan)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[r.WordLower] = r
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// CountWords returns the number of records in the word table.
func CountWords(ex DBExecutor) (int, error) {
	var n int
	if err := ex.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetMeta reads a value from the store_meta table; missing keys yield "".
func GetMeta(ex DBExecutor, key string) (string, error) {
	var v string
	err := ex.QueryRow(`SELECT value FROM store_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetMeta writes a value into the store_meta table.
func SetMeta(ex DBExecutor, key, value string) error {
	_, err := ex.Exec(`INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
