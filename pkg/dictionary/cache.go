package dictionary

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmhart/lexiread/pkg/db"

	_ "github.com/mattn/go-sqlite3"
)

// CacheFileName is the fixed store name for the chunk cache, distinct from
// the word-lookup store.
const CacheFileName = "lexiread-chunk-cache.db"

// Cache is the persistent chunk store. Every operation is best-effort: a
// failed write is logged and swallowed so the loader keeps working (just
// slower) when caching is broken.
type Cache struct {
	conn *sql.DB
	// Logger receives best-effort failure notices. nil means silent.
	Logger *log.Logger
}

// OpenCache opens (or creates) the chunk cache at path.
func OpenCache(path string) (*Cache, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open chunk cache: %w", err)
	}
	if err := db.InitCacheSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init chunk cache: %w", err)
	}
	return &Cache{conn: conn}, nil
}

func (c *Cache) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

// SaveChunk stores a chunk payload stamped with the metadata version.
func (c *Cache) SaveChunk(n int, data []byte, version string) {
	_, err := c.conn.Exec(`INSERT INTO chunk_cache (chunk_number, version, data) VALUES (?, ?, ?)
		ON CONFLICT(chunk_number) DO UPDATE SET version = excluded.version, data = excluded.data, saved_at = CURRENT_TIMESTAMP`,
		n, version, data)
	if err != nil {
		c.logf("cache: failed to save chunk %d: %v", n, err)
	}
}

// LoadChunk returns the cached payload for chunk n, or nil on a miss.
// When expectedVersion is non-empty, a stored chunk with a different version
// stamp counts as a miss, forcing a re-download.
func (c *Cache) LoadChunk(n int, expectedVersion string) []byte {
	var version string
	var data []byte
	err := c.conn.QueryRow(`SELECT version, data FROM chunk_cache WHERE chunk_number = ?`, n).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		c.logf("cache: failed to load chunk %d: %v", n, err)
		return nil
	}
	if expectedVersion != "" && version != expectedVersion {
		return nil
	}
	return data
}

// SaveMetadata stores the metadata document as the single cache_meta record.
func (c *Cache) SaveMetadata(m *Metadata) {
	data, err := json.Marshal(m)
	if err != nil {
		c.logf("cache: failed to encode metadata: %v", err)
		return
	}
	_, err = c.conn.Exec(`INSERT INTO cache_meta (id, json) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET json = excluded.json`, string(data))
	if err != nil {
		c.logf("cache: failed to save metadata: %v", err)
	}
}

// LoadMetadata returns the cached metadata, or nil when absent or unreadable.
func (c *Cache) LoadMetadata() *Metadata {
	var data string
	err := c.conn.QueryRow(`SELECT json FROM cache_meta WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		c.logf("cache: failed to load metadata: %v", err)
		return nil
	}
	m, err := ParseMetadata([]byte(data))
	if err != nil {
		c.logf("cache: malformed cached metadata: %v", err)
		return nil
	}
	return m
}

// Clear drops all cached chunks and metadata.
func (c *Cache) Clear() error {
	if _, err := c.conn.Exec(`DELETE FROM chunk_cache`); err != nil {
		return err
	}
	_, err := c.conn.Exec(`DELETE FROM cache_meta`)
	return err
}

// Close releases the underlying store handle.
func (c *Cache) Close() error {
	return c.conn.Close()
}
