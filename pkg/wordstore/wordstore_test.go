package wordstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmhart/lexiread/pkg/db"

	_ "github.com/mattn/go-sqlite3"
)

func openTestStore(t *testing.T, maxCache int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "words.db"), maxCache)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWords(t *testing.T, s *Store, words ...string) {
	t.Helper()
	for _, w := range words {
		if err := db.UpsertWord(s.conn, &db.WordRecord{Word: w}); err != nil {
			t.Fatalf("seed %s: %v", w, err)
		}
	}
}

func newLiveStore(t *testing.T, n int) *sql.DB {
	t.Helper()
	live, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open live: %v", err)
	}
	live.SetMaxOpenConns(1)
	t.Cleanup(func() { live.Close() })
	if err := db.InitWordSchema(live); err != nil {
		t.Fatalf("init live: %v", err)
	}
	for i := 0; i < n; i++ {
		rec := &db.WordRecord{Word: fmt.Sprintf("word%04d", i), BNC: i + 1}
		if err := db.UpsertWord(live, rec); err != nil {
			t.Fatalf("seed live: %v", err)
		}
	}
	return live
}

func TestQueryWordCaseInsensitive(t *testing.T) {
	s := openTestStore(t, 0)
	seedWords(t, s, "Apple")

	ctx := context.Background()
	rec, err := s.QueryWord(ctx, "APPLE")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rec == nil || rec.Word != "Apple" {
		t.Fatalf("expected Apple record, got %+v", rec)
	}

	// Second query must be served by the front cache.
	if _, err := s.QueryWord(ctx, "apple"); err != nil {
		t.Fatalf("query: %v", err)
	}
	stats := s.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalQueries != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestQueryWordMissing(t *testing.T) {
	s := openTestStore(t, 0)
	rec, err := s.QueryWord(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for missing word, got %+v", rec)
	}
}

func TestFrontCacheBoundAndEvictionOrder(t *testing.T) {
	s := openTestStore(t, 3)
	seedWords(t, s, "one", "two", "three", "four")

	ctx := context.Background()
	for _, w := range []string{"one", "two", "three", "four"} {
		if _, err := s.QueryWord(ctx, w); err != nil {
			t.Fatalf("query %s: %v", w, err)
		}
	}

	stats := s.CacheStats()
	if stats.CacheSize > 3 {
		t.Fatalf("cache exceeded bound: %d", stats.CacheSize)
	}

	// "one" was the earliest insertion and must have been evicted: querying
	// it again is a miss, while "two" is still a hit.
	before := s.CacheStats()
	if _, err := s.QueryWord(ctx, "two"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := s.CacheStats().Hits; got != before.Hits+1 {
		t.Errorf("expected two to be cached, hits %d -> %d", before.Hits, got)
	}
	before = s.CacheStats()
	if _, err := s.QueryWord(ctx, "one"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := s.CacheStats().Misses; got != before.Misses+1 {
		t.Errorf("expected one to be evicted, misses %d -> %d", before.Misses, got)
	}
}

func TestQueryBatch(t *testing.T) {
	s := openTestStore(t, 0)
	seedWords(t, s, "alpha", "beta")

	ctx := context.Background()
	// Warm the cache with one word.
	if _, err := s.QueryWord(ctx, "alpha"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	got, err := s.QueryBatch(ctx, []string{"Alpha", "beta", "missing", "alpha"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	// One result per unique word.
	if len(got) != 3 {
		t.Fatalf("expected 3 unique results, got %d", len(got))
	}
	if got["alpha"] == nil || got["beta"] == nil {
		t.Errorf("expected alpha and beta found: %v", got)
	}
	if rec, ok := got["missing"]; !ok || rec != nil {
		t.Errorf("expected missing present with nil record")
	}
}

func TestImportFromLiveIdempotent(t *testing.T) {
	s := openTestStore(t, 0)
	live := newLiveStore(t, 2500)

	ctx := context.Background()
	var progressCalls int
	err := s.ImportFromLive(ctx, live, func(done, total int) {
		progressCalls++
		if total != 2500 {
			t.Errorf("expected total 2500, got %d", total)
		}
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if progressCalls == 0 {
		t.Error("expected progress callbacks")
	}

	n, err := s.WordCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2500 {
		t.Fatalf("expected 2500 imported, got %d", n)
	}

	// Second import is a no-op thanks to the completion flag.
	called := false
	if err := s.ImportFromLive(ctx, live, func(done, total int) { called = true }); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if called {
		t.Error("expected re-import to skip work")
	}
}

func TestClearCacheResetsStats(t *testing.T) {
	s := openTestStore(t, 0)
	seedWords(t, s, "word")
	ctx := context.Background()
	s.QueryWord(ctx, "word")
	s.QueryWord(ctx, "word")

	s.ClearCache()
	stats := s.CacheStats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.TotalQueries != 0 || stats.CacheSize != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestHitRate(t *testing.T) {
	var s Stats
	if s.HitRate() != 0 {
		t.Errorf("empty stats should have rate 0")
	}
	s = Stats{Hits: 3, Misses: 1}
	if got := s.HitRate(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
}
