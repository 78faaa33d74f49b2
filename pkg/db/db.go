package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const wordSchemaSQL = `
CREATE TABLE IF NOT EXISTS words (
	word TEXT NOT NULL,
	word_lower TEXT PRIMARY KEY,
	phonetic TEXT DEFAULT '',
	definition TEXT DEFAULT '',
	translation TEXT DEFAULT '',
	pos TEXT DEFAULT '',
	collins INTEGER DEFAULT 0,
	oxford INTEGER DEFAULT 0,
	tag TEXT DEFAULT '',
	bnc INTEGER DEFAULT 0,
	frq INTEGER DEFAULT 0,
	exchange TEXT DEFAULT '',
	detail TEXT DEFAULT '',
	audio TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_words_bnc ON words(bnc);
CREATE TABLE IF NOT EXISTS store_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS chunk_cache (
	chunk_number INTEGER PRIMARY KEY,
	version TEXT NOT NULL,
	data BLOB NOT NULL,
	saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS cache_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	json TEXT NOT NULL
)`

// InitWordSchema creates the word-lookup tables on the given connection.
func InitWordSchema(conn *sql.DB) error {
	return execStatements(conn, wordSchemaSQL)
}

// InitCacheSchema creates the chunk-cache tables on the given connection.
// The cache lives in its own database file, distinct from the word store.
func InitCacheSchema(conn *sql.DB) error {
	return execStatements(conn, cacheSchemaSQL)
}

func execStatements(conn *sql.DB, schema string) error {
	stmts := strings.Split(schema, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := conn.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
