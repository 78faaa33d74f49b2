// Package wordstore implements the query-optimized persistent word store: a
// sqlite file keyed by word_lower with a bounded in-memory front cache, so
// hot lookups never touch the persistent layer.
package wordstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmhart/lexiread/pkg/batch"
	"github.com/jmhart/lexiread/pkg/db"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultCacheSize bounds the front cache.
const DefaultCacheSize = 10000

// importBatchSize rows are copied per transaction during bulk import, with a
// yield between batches.
const importBatchSize = 1000

const importCompleteKey = "import_complete"

// Stats reports front-cache effectiveness since the last ClearCache.
type Stats struct {
	Hits         int
	Misses       int
	TotalQueries int
	CacheSize    int
}

// HitRate is hits/(hits+misses), 0 when no queries were issued.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Store is the direct word store. The front cache evicts in insertion order
// rather than access order; the hot set (common words) is stable enough that
// the cheaper policy behaves the same in practice.
type Store struct {
	conn *sql.DB
	// Logger receives import progress notices. nil means silent.
	Logger *log.Logger

	mu       sync.Mutex
	cache    map[string]*db.WordRecord
	order    []string
	maxCache int
	hits     int
	misses   int
	total    int
}

// Open opens (or creates) the store at path. maxCache <= 0 selects the
// default front-cache capacity.
func Open(path string, maxCache int) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open word store: %w", err)
	}
	if err := db.InitWordSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init word store: %w", err)
	}
	if maxCache <= 0 {
		maxCache = DefaultCacheSize
	}
	return &Store{
		conn:     conn,
		cache:    make(map[string]*db.WordRecord),
		maxCache: maxCache,
	}, nil
}

// Close releases the underlying store handle.
func (s *Store) Close() error {
	return s.conn.Close()
}

// DB exposes the underlying handle for read-only consumers such as
// frequency ranking.
func (s *Store) DB() *sql.DB {
	return s.conn
}

// ImportFromLive bulk-copies every word from the live chunk-built store into
// this one. The migration is idempotent: once the completion flag is set,
// later calls are no-ops. Rows are copied in fixed batches, one transaction
// each, yielding between batches so the process stays responsive.
func (s *Store) ImportFromLive(ctx context.Context, live *sql.DB, onProgress func(done, total int)) error {
	done, err := db.GetMeta(s.conn, importCompleteKey)
	if err != nil {
		return fmt.Errorf("check import flag: %w", err)
	}
	if done == "1" {
		return nil
	}

	total, err := db.CountWords(live)
	if err != nil {
		return fmt.Errorf("count source words: %w", err)
	}

	rows, err := live.Query(`SELECT word, word_lower, phonetic, definition, translation, pos, collins, oxford, tag, bnc, frq, exchange, detail, audio FROM words`)
	if err != nil {
		return fmt.Errorf("read source words: %w", err)
	}
	defer rows.Close()

	w := batch.NewWriter(s.conn, importBatchSize)
	copied := 0
	for rows.Next() {
		var r db.WordRecord
		var oxford int
		if err := rows.Scan(&r.Word, &r.WordLower, &r.Phonetic, &r.Definition,
			&r.Translation, &r.PartOfSpeech, &r.Collins, &oxford, &r.Tag,
			&r.BNC, &r.Frq, &r.Exchange, &r.Detail, &r.Audio); err != nil {
			return fmt.Errorf("scan source row: %w", err)
		}
		r.Oxford = oxford != 0

		rec := r
		if err := w.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return db.UpsertWord(tx, &rec)
		}); err != nil {
			return fmt.Errorf("import word %s: %w", rec.Word, err)
		}
		copied++
		if copied%importBatchSize == 0 {
			if onProgress != nil {
				onProgress(copied, total)
			}
			// Yield between batches.
			select {
			case <-time.After(time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate source rows: %w", err)
	}
	if err := w.Flush(ctx); err != nil {
		return fmt.Errorf("flush import: %w", err)
	}
	if onProgress != nil {
		onProgress(copied, total)
	}

	if err := db.SetMeta(s.conn, importCompleteKey, "1"); err != nil {
		return fmt.Errorf("set import flag: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Printf("word store import complete: %d words", copied)
	}
	return nil
}

// QueryWord looks a word up case-insensitively, front cache first. A found
// record is cached before returning. Missing words return (nil, nil).
func (s *Store) QueryWord(ctx context.Context, word string) (*db.WordRecord, error) {
	lower := db.LowerWord(word)

	s.mu.Lock()
	s.total++
	if rec, ok := s.cache[lower]; ok {
		s.hits++
		s.mu.Unlock()
		return rec, nil
	}
	s.misses++
	s.mu.Unlock()

	rec, err := db.GetWordByLower(s.conn, lower)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.mu.Lock()
		s.insertCached(lower, rec)
		s.mu.Unlock()
	}
	return rec, nil
}

// QueryBatch resolves many words in one pass: cache hits are returned
// immediately, misses are fetched with a single batched query. The result
// holds one entry per unique input word, nil for words not found.
func (s *Store) QueryBatch(ctx context.Context, words []string) (map[string]*db.WordRecord, error) {
	out := make(map[string]*db.WordRecord, len(words))
	var missing []string

	s.mu.Lock()
	for _, w := range words {
		lower := db.LowerWord(w)
		if _, seen := out[lower]; seen {
			continue
		}
		s.total++
		if rec, ok := s.cache[lower]; ok {
			s.hits++
			out[lower] = rec
			continue
		}
		s.misses++
		out[lower] = nil
		missing = append(missing, lower)
	}
	s.mu.Unlock()

	if len(missing) > 0 {
		found, err := db.GetWordsByLower(s.conn, missing)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		for lower, rec := range found {
			out[lower] = rec
			s.insertCached(lower, rec)
		}
		s.mu.Unlock()
	}
	return out, nil
}

// insertCached adds a record to the front cache, evicting the earliest
// insertions when over capacity. Re-inserting an existing key refreshes its
// position. Callers hold s.mu.
func (s *Store) insertCached(lower string, rec *db.WordRecord) {
	if _, ok := s.cache[lower]; ok {
		for i, k := range s.order {
			if k == lower {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.cache[lower] = rec
	s.order = append(s.order, lower)
	for len(s.cache) > s.maxCache {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cache, oldest)
	}
}

// CacheStats returns a snapshot of front-cache counters.
func (s *Store) CacheStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:         s.hits,
		Misses:       s.misses,
		TotalQueries: s.total,
		CacheSize:    len(s.cache),
	}
}

// ClearCache empties the front cache and resets the counters.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*db.WordRecord)
	s.order = nil
	s.hits, s.misses, s.total = 0, 0, 0
}

// WordCount reports the number of persisted words.
func (s *Store) WordCount() (int, error) {
	return db.CountWords(s.conn)
}
