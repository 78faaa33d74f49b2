package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Chunk describes one downloadable partition of the word set. Lower chunk
// numbers hold higher-frequency words and are loaded first.
type Chunk struct {
	ChunkNumber int    `json:"chunkNumber"`
	Filename    string `json:"filename"`
	WordCount   int    `json:"wordCount"`
	SizeBytes   int64  `json:"sizeBytes"`
	Offset      int64  `json:"offset,omitempty"`
	Priority    int    `json:"priority,omitempty"`
}

// Metadata describes the full chunk set. Version is the cache-invalidation
// key: a cached chunk stamped with a different version is a cache miss.
type Metadata struct {
	Version     string  `json:"version"`
	TotalChunks int     `json:"totalChunks"`
	TotalWords  int     `json:"totalWords"`
	Chunks      []Chunk `json:"chunks"`
}

// ParseMetadata decodes a metadata JSON document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if m.Version == "" || len(m.Chunks) == 0 {
		return nil, fmt.Errorf("metadata missing version or chunks")
	}
	return &m, nil
}

// ChunkByNumber returns the descriptor for chunk n.
func (m *Metadata) ChunkByNumber(n int) (*Chunk, bool) {
	for i := range m.Chunks {
		if m.Chunks[i].ChunkNumber == n {
			return &m.Chunks[i], true
		}
	}
	return nil, false
}

// TotalBytes sums the declared compressed sizes of all chunks.
func (m *Metadata) TotalBytes() int64 {
	var total int64
	for _, c := range m.Chunks {
		total += c.SizeBytes
	}
	return total
}

// FetchMetadata retrieves and parses the metadata document from url.
func FetchMetadata(ctx context.Context, client *http.Client, url string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "lexiread-cli")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch returned status: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read metadata body: %w", err)
	}
	return ParseMetadata(data)
}
