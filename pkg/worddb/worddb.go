// Package worddb is the single entry point for word lookups. A query walks
// the direct word store, then the live chunk-built store, then an optional
// remote API stub, and returns one canonical record shape. "Not found" is
// never an error.
package worddb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jmhart/lexiread/pkg/db"
	"github.com/jmhart/lexiread/pkg/wordstore"
)

// batchThreshold is the input size above which BatchQuery switches from
// individual lookups to the store's batched path.
const batchThreshold = 10

// ErrNotInitialized is returned when querying before Initialize. Querying
// too early is a programming error and stays loud.
var ErrNotInitialized = &DatabaseError{"word database not initialized"}

// DatabaseError provides a simple typed error for database contract
// violations.
type DatabaseError struct{ msg string }

func (e *DatabaseError) Error() string { return e.msg }

// Database fans a lookup out over the configured sources.
type Database struct {
	direct *wordstore.Store
	live   *sql.DB
	apiURL string
	client *http.Client

	initialized bool
}

// New creates an empty database facade; call Initialize before querying.
func New() *Database {
	return &Database{client: &http.Client{Timeout: 10 * time.Second}}
}

// Initialize wires the lookup sources. Any source may be absent: direct and
// live may be nil, and an empty apiURL disables the remote fallback.
func (d *Database) Initialize(direct *wordstore.Store, live *sql.DB, apiURL string) {
	d.direct = direct
	d.live = live
	d.apiURL = apiURL
	d.initialized = true
}

// Query resolves a single word. Missing words return (nil, nil).
func (d *Database) Query(ctx context.Context, word string) (*db.WordRecord, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	lower := db.LowerWord(word)

	if d.direct != nil {
		rec, err := d.direct.QueryWord(ctx, lower)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return normalize(rec), nil
		}
	}
	if d.live != nil {
		rec, err := db.GetWordByLower(d.live, lower)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return normalize(rec), nil
		}
	}
	if d.apiURL != "" {
		return d.queryRemote(ctx, lower), nil
	}
	return nil, nil
}

// BatchQuery resolves many words, returning one entry per unique lookup
// key, nil for words not found anywhere. Large inputs go through the direct
// store's batched path.
func (d *Database) BatchQuery(ctx context.Context, words []string) (map[string]*db.WordRecord, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if len(words) <= batchThreshold || d.direct == nil {
		out := make(map[string]*db.WordRecord, len(words))
		for _, w := range words {
			lower := db.LowerWord(w)
			if _, seen := out[lower]; seen {
				continue
			}
			rec, err := d.Query(ctx, lower)
			if err != nil {
				return nil, err
			}
			out[lower] = rec
		}
		return out, nil
	}

	out, err := d.direct.QueryBatch(ctx, words)
	if err != nil {
		return nil, err
	}
	// Fill direct-store misses from the fallback sources.
	var missing []string
	for lower, rec := range out {
		if rec == nil {
			missing = append(missing, lower)
		} else {
			out[lower] = normalize(rec)
		}
	}
	if len(missing) > 0 && d.live != nil {
		found, err := db.GetWordsByLower(d.live, missing)
		if err != nil {
			return nil, err
		}
		for lower, rec := range found {
			out[lower] = normalize(rec)
		}
	}
	if d.apiURL != "" {
		for lower, rec := range out {
			if rec == nil {
				out[lower] = d.queryRemote(ctx, lower)
			}
		}
	}
	return out, nil
}

// queryRemote asks the remote API stub for a word. The stub is a
// placeholder: any transport or decode failure, and any non-OK status,
// resolves to nil rather than an error.
func (d *Database) queryRemote(ctx context.Context, lower string) *db.WordRecord {
	u := fmt.Sprintf("%s?word=%s", d.apiURL, url.QueryEscape(lower))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var rec db.WordRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil
	}
	if rec.Word == "" {
		return nil
	}
	return normalize(&rec)
}

// normalize coerces a raw record from any source into the canonical shape.
func normalize(rec *db.WordRecord) *db.WordRecord {
	if rec.WordLower == "" {
		rec.WordLower = db.LowerWord(rec.Word)
	}
	return rec
}
