package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jmhart/lexiread/pkg/db"

	_ "github.com/mattn/go-sqlite3"
)

// State tracks the loader lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateLoadingPriority
	StateLoadingBackground
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateLoadingPriority:
		return "loading-priority"
	case StateLoadingBackground:
		return "loading-background"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// EventKind labels a load event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventChunkLoaded
	EventComplete
	EventError
)

// LoadEvent is the structured progress notification emitted by the loader.
// Events for a chunk fire only after its insertion transaction has
// committed, so a query issued after observing EventChunkLoaded sees that
// chunk's words.
type LoadEvent struct {
	Kind         EventKind
	ChunkNumber  int
	FromCache    bool
	LoadedChunks int
	TotalChunks  int
	LoadedBytes  int64
	TotalBytes   int64
	Percent      float64
	Err          error
}

// ErrNotInitialized is returned when chunk loading is attempted before
// Initialize has completed. This is a contract violation, kept loud.
var ErrNotInitialized = &LoaderError{"loader not initialized"}

// LoaderError provides a simple typed error for loader contract violations.
type LoaderError struct{ msg string }

func (e *LoaderError) Error() string { return e.msg }

// LoaderConfig wires a Loader's collaborators. Cache may be nil; the loader
// then downloads every chunk.
type LoaderConfig struct {
	MetadataURL  string
	ChunkBaseURL string
	Cache        *Cache
	Downloader   *Downloader
	// OnEvent receives load events, in order, from the loading goroutine.
	OnEvent func(LoadEvent)
	Logger  *log.Logger
	// BackgroundDelay is the pause between background chunk loads, keeping
	// the process responsive during the long tail of the load.
	BackgroundDelay time.Duration
}

// Loader progressively populates an in-process word store from cached or
// downloaded chunks, priority chunks first.
type Loader struct {
	cfg    LoaderConfig
	dl     *Downloader
	logger *log.Logger

	mu           sync.Mutex
	state        State
	meta         *Metadata
	live         *sql.DB
	merger       *Merger
	loaded       map[int]bool
	loadedChunks int
	loadedBytes  int64

	// loadMu serializes chunk loads so they stay strictly sequential.
	loadMu sync.Mutex
	bg     sync.WaitGroup
}

// NewLoader creates a loader in the uninitialized state.
func NewLoader(cfg LoaderConfig) *Loader {
	dl := cfg.Downloader
	if dl == nil {
		dl = NewDownloader()
	}
	if cfg.BackgroundDelay <= 0 {
		cfg.BackgroundDelay = 50 * time.Millisecond
	}
	return &Loader{
		cfg:    cfg,
		dl:     dl,
		logger: cfg.Logger,
		state:  StateUninitialized,
		loaded: make(map[int]bool),
	}
}

func (l *Loader) logf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Printf(format, args...)
	}
}

func (l *Loader) emit(ev LoadEvent) {
	if l.cfg.OnEvent != nil {
		l.cfg.OnEvent(ev)
	}
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Metadata returns the session's metadata; nil before Initialize.
func (l *Loader) Metadata() *Metadata {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta
}

// LiveDB exposes the live word store populated by chunk loads.
func (l *Loader) LiveDB() *sql.DB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

// fail records an unrecoverable failure and moves the loader to the
// terminal error state.
func (l *Loader) fail(err error) error {
	l.mu.Lock()
	l.state = StateError
	l.mu.Unlock()
	l.emit(LoadEvent{Kind: EventError, Err: err})
	return err
}

// Initialize opens the live store and resolves metadata, cache first with a
// network fallback. Metadata is fetched once and immutable for the session.
func (l *Loader) Initialize(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateUninitialized {
		l.mu.Unlock()
		return fmt.Errorf("initialize called in state %s", l.state)
	}
	l.state = StateInitializing
	l.mu.Unlock()

	live, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return l.fail(fmt.Errorf("open live store: %w", err))
	}
	// Each pool connection gets its own private :memory: database, so the
	// pool must stay at a single connection.
	live.SetMaxOpenConns(1)
	if err := db.InitWordSchema(live); err != nil {
		live.Close()
		return l.fail(fmt.Errorf("init live store: %w", err))
	}

	var meta *Metadata
	if l.cfg.Cache != nil {
		meta = l.cfg.Cache.LoadMetadata()
	}
	if meta == nil {
		client := l.dl.Client
		if client == nil {
			client = http.DefaultClient
		}
		meta, err = FetchMetadata(ctx, client, l.cfg.MetadataURL)
		if err != nil {
			live.Close()
			return l.fail(err)
		}
		if l.cfg.Cache != nil {
			l.cfg.Cache.SaveMetadata(meta)
		}
	}

	l.mu.Lock()
	l.live = live
	l.merger = &Merger{DB: live}
	l.meta = meta
	l.mu.Unlock()

	l.emit(LoadEvent{
		Kind:        EventProgress,
		TotalChunks: meta.TotalChunks,
		TotalBytes:  meta.TotalBytes(),
	})
	return nil
}

// LoadChunk loads chunk n into the live store: cache hit decodes directly,
// cache miss downloads and writes through. Calling it again for a loaded
// chunk is a no-op. A failure emits an error event and is returned to the
// caller; it never aborts the overall loading sequence.
func (l *Loader) LoadChunk(ctx context.Context, n int) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	l.mu.Lock()
	if l.meta == nil || l.live == nil {
		l.mu.Unlock()
		return ErrNotInitialized
	}
	if l.loaded[n] {
		l.mu.Unlock()
		return nil
	}
	meta := l.meta
	merger := l.merger
	l.mu.Unlock()

	chunk, ok := meta.ChunkByNumber(n)
	if !ok {
		err := fmt.Errorf("no such chunk: %d", n)
		l.emit(l.errorEvent(n, err))
		return err
	}

	records, fromCache, err := l.fetchChunk(ctx, chunk, meta.Version)
	if err != nil {
		l.emit(l.errorEvent(n, err))
		return err
	}

	if _, err := merger.Merge(records); err != nil {
		err = fmt.Errorf("merge chunk %d: %w", n, err)
		l.emit(l.errorEvent(n, err))
		return err
	}

	l.mu.Lock()
	l.loaded[n] = true
	l.loadedChunks++
	l.loadedBytes += chunk.SizeBytes
	ev := LoadEvent{
		ChunkNumber:  n,
		FromCache:    fromCache,
		LoadedChunks: l.loadedChunks,
		TotalChunks:  meta.TotalChunks,
		LoadedBytes:  l.loadedBytes,
		TotalBytes:   meta.TotalBytes(),
	}
	l.mu.Unlock()

	ev.Percent = percent(ev.LoadedBytes, ev.TotalBytes, ev.LoadedChunks, ev.TotalChunks)
	ev.Kind = EventChunkLoaded
	l.emit(ev)
	ev.Kind = EventProgress
	l.emit(ev)
	return nil
}

// fetchChunk resolves a chunk's decoded records, trying the cache before the
// network. A cached payload that fails to decode degrades to a cache miss.
func (l *Loader) fetchChunk(ctx context.Context, chunk *Chunk, version string) ([]*db.WordRecord, bool, error) {
	if l.cfg.Cache != nil {
		if data := l.cfg.Cache.LoadChunk(chunk.ChunkNumber, version); data != nil {
			records, err := DecodeChunk(data)
			if err == nil {
				return records, true, nil
			}
			l.logf("loader: cached chunk %d undecodable, re-downloading: %v", chunk.ChunkNumber, err)
		}
	}

	url := strings.TrimRight(l.cfg.ChunkBaseURL, "/") + "/" + chunk.Filename
	data, err := l.dl.DownloadChunk(ctx, url, chunk.SizeBytes)
	if err != nil {
		return nil, false, err
	}
	records, err := DecodeChunk(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode chunk %d: %w", chunk.ChunkNumber, err)
	}
	if l.cfg.Cache != nil {
		l.cfg.Cache.SaveChunk(chunk.ChunkNumber, data, version)
	}
	return records, false, nil
}

func (l *Loader) errorEvent(n int, err error) LoadEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	var totalBytes int64
	if l.meta != nil {
		total = l.meta.TotalChunks
		totalBytes = l.meta.TotalBytes()
	}
	return LoadEvent{
		Kind:         EventError,
		ChunkNumber:  n,
		LoadedChunks: l.loadedChunks,
		TotalChunks:  total,
		LoadedBytes:  l.loadedBytes,
		TotalBytes:   totalBytes,
		Err:          err,
	}
}

// LoadPriorityChunks loads chunks 1..k synchronously, then kicks off
// background loading of the remainder and returns. Per-chunk failures do not
// stop the sequence; the first one is returned so the caller can decide to
// retry. The store is usable for queries as soon as this returns.
func (l *Loader) LoadPriorityChunks(ctx context.Context, k int) error {
	l.mu.Lock()
	if l.meta == nil {
		l.mu.Unlock()
		return ErrNotInitialized
	}
	total := l.meta.TotalChunks
	l.state = StateLoadingPriority
	l.mu.Unlock()

	if k > total {
		k = total
	}
	var firstErr error
	for n := 1; n <= k; n++ {
		if err := l.LoadChunk(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	l.mu.Lock()
	l.state = StateLoadingBackground
	l.mu.Unlock()

	l.bg.Add(1)
	go l.loadRemaining(ctx, k+1, total)

	return firstErr
}

// loadRemaining loads chunks start..total sequentially with a small delay
// between chunks. Failures are logged and skipped; those chunks' words
// simply resolve as unknown.
func (l *Loader) loadRemaining(ctx context.Context, start, total int) {
	defer l.bg.Done()
	for n := start; n <= total; n++ {
		select {
		case <-time.After(l.cfg.BackgroundDelay):
		case <-ctx.Done():
			return
		}
		if err := l.LoadChunk(ctx, n); err != nil {
			l.logf("loader: background chunk %d failed: %v", n, err)
		}
	}

	l.mu.Lock()
	l.state = StateReady
	loadedChunks := l.loadedChunks
	loadedBytes := l.loadedBytes
	var totalBytes int64
	if l.meta != nil {
		totalBytes = l.meta.TotalBytes()
	}
	l.mu.Unlock()

	l.emit(LoadEvent{
		Kind:         EventComplete,
		LoadedChunks: loadedChunks,
		TotalChunks:  total,
		LoadedBytes:  loadedBytes,
		TotalBytes:   totalBytes,
		Percent:      percent(loadedBytes, totalBytes, loadedChunks, total),
	})
}

// Wait blocks until background loading finishes.
func (l *Loader) Wait() {
	l.bg.Wait()
}

// Close waits for background loading and releases the live store.
func (l *Loader) Close() error {
	l.bg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live != nil {
		err := l.live.Close()
		l.live = nil
		return err
	}
	return nil
}

func percent(loadedBytes, totalBytes int64, loadedChunks, totalChunks int) float64 {
	if totalBytes > 0 {
		return float64(loadedBytes) / float64(totalBytes) * 100
	}
	if totalChunks > 0 {
		return float64(loadedChunks) / float64(totalChunks) * 100
	}
	return 0
}
