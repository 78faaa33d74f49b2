package batch

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestWriterCommitsBatches(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	ctx := context.Background()
	w := NewWriter(db, 2)
	for _, val := range []string{"A", "B", "C"} {
		v := val
		if err := w.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO test (val) VALUES (?)", v)
			return err
		}); err != nil {
			t.Fatalf("submit %s: %v", v, err)
		}
	}
	// A and B committed by the size trigger; C still buffered.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows before flush, got %d", count)
	}

	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows after flush, got %d", count)
	}
	if w.Flushed != 3 {
		t.Fatalf("expected 3 flushed callbacks, got %d", w.Flushed)
	}
}

func TestWriterRollsBackFailedBatch(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	ctx := context.Background()
	w := NewWriter(db, 2)
	if err := w.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO test (val) VALUES (?)", "C")
		return err
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err = w.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fmt.Errorf("intentional error")
	})
	if err == nil {
		t.Fatal("expected batch error surfaced from Submit")
	}

	// Whole batch rolled back.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("failed to query row count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows (rollback), got %d", count)
	}
}

func TestWriterWithoutDB(t *testing.T) {
	w := NewWriter(nil, 5)
	ctx := context.Background()
	called := 0
	for i := 0; i < 12; i++ {
		if err := w.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			called++
			return nil
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if called != 12 {
		t.Fatalf("expected 12 calls, got %d", called)
	}
}
