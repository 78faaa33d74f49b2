// Package dictionary implements progressive loading of a chunked dictionary
// dataset: metadata discovery, chunk download with retry and gzip handling,
// persistent chunk caching, and merging decoded chunks into a live sqlite
// word store.
package dictionary

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jmhart/lexiread/pkg/db"
)

// chunkColumnCount is the fixed column layout of a chunk payload row:
// word, phonetic, definition, translation, pos, collins, oxford, tag,
// bnc, frq, exchange, detail, audio.
const chunkColumnCount = 13

// ParseRow converts one chunk payload row into a word record.
func ParseRow(fields []string) (*db.WordRecord, error) {
	if len(fields) != chunkColumnCount {
		return nil, fmt.Errorf("expected %d columns, got %d", chunkColumnCount, len(fields))
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("empty word column")
	}
	r := &db.WordRecord{
		Word:         fields[0],
		WordLower:    db.LowerWord(fields[0]),
		Phonetic:     fields[1],
		Definition:   fields[2],
		Translation:  fields[3],
		PartOfSpeech: fields[4],
		Collins:      atoi(fields[5]),
		Oxford:       atoi(fields[6]) != 0,
		Tag:          fields[7],
		BNC:          atoi(fields[8]),
		Frq:          atoi(fields[9]),
		Exchange:     fields[10],
		Detail:       fields[11],
		Audio:        fields[12],
	}
	return r, nil
}

// DecodeChunk parses a decompressed chunk payload into word records.
// Malformed rows are skipped rather than failing the whole chunk.
func DecodeChunk(data []byte) ([]*db.WordRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []*db.WordRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk row: %w", err)
		}
		rec, err := ParseRow(fields)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("chunk decoded to zero rows")
	}
	return records, nil
}

// atoi is a tolerant integer parse: empty or garbage counts as 0 (unknown).
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
