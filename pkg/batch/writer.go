package batch

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// Writer buffers write operations and commits them in fixed-size batches,
// one transaction per batch. Flushing happens inline on the submitting
// goroutine, so callers can yield between batches to keep the process
// responsive during a long bulk import.
type Writer struct {
	db  *sql.DB
	buf []WriteFunc
	cap int
	// Flushed counts successfully committed callbacks.
	Flushed int
}

// NewWriter creates a batch writer flushing every bufferSize submissions.
func NewWriter(db *sql.DB, bufferSize int) *Writer {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &Writer{
		db:  db,
		buf: make([]WriteFunc, 0, bufferSize),
		cap: bufferSize,
	}
}

// Submit enqueues a write. When the buffer fills, the whole batch is
// committed before Submit returns; a batch error rolls the batch back and is
// returned to the caller.
func (w *Writer) Submit(ctx context.Context, fn WriteFunc) error {
	w.buf = append(w.buf, fn)
	if len(w.buf) >= w.cap {
		return w.Flush(ctx)
	}
	return nil
}

// Flush commits any buffered writes in a single transaction.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	batch := w.buf
	w.buf = w.buf[:0]

	if w.db == nil {
		for _, fn := range batch {
			if err := fn(ctx, nil); err != nil {
				return err
			}
		}
		w.Flushed += len(batch)
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, fn := range batch {
		if err := fn(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d items): %w", len(batch), err)
	}
	w.Flushed += len(batch)
	return nil
}
