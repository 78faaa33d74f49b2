package dictionary

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultRetries        = 3
	defaultBaseBackoff    = 1 * time.Second
	defaultAttemptTimeout = 30 * time.Second
)

// Downloader fetches chunk payloads over HTTP with retry and decompression.
type Downloader struct {
	Client *http.Client
	// Retries is the maximum number of attempts per chunk.
	Retries int
	// BaseBackoff is doubled after each failed attempt (1s, 2s, 4s).
	BaseBackoff time.Duration
	// AttemptTimeout bounds a single attempt via context cancellation.
	AttemptTimeout time.Duration
}

// NewDownloader returns a downloader with the default retry policy.
func NewDownloader() *Downloader {
	return &Downloader{
		Client:         &http.Client{},
		Retries:        defaultRetries,
		BaseBackoff:    defaultBaseBackoff,
		AttemptTimeout: defaultAttemptTimeout,
	}
}

// DownloadChunk fetches one chunk and returns its decompressed payload.
// declaredSize is the compressed size from the chunk metadata; it drives the
// already-decompressed detection in MaybeDecompress. Network and
// decompression failures are retried alike; exhausting retries returns a
// terminal error wrapping the last underlying failure.
func (d *Downloader) DownloadChunk(ctx context.Context, url string, declaredSize int64) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < d.Retries; attempt++ {
		if attempt > 0 {
			backoff := d.BaseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		data, err := d.downloadOnce(ctx, url, declaredSize)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("chunk download failed after %d attempts: %w", d.Retries, lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, url string, declaredSize int64) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "lexiread-cli")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return MaybeDecompress(body, declaredSize, resp.Uncompressed)
}

// MaybeDecompress gunzips a chunk payload unless it has evidently already
// been decompressed in transit. A payload is treated as plain when the
// transport signalled that it handled Content-Encoding itself, or when the
// byte length exceeds the declared compressed size by more than 1.5x
// (transparent decompression by an intermediary proxy). Gunzipping such a
// payload a second time would fail, so the heuristic runs first.
func MaybeDecompress(data []byte, declaredSize int64, transportDecoded bool) ([]byte, error) {
	if transportDecoded {
		return data, nil
	}
	if declaredSize > 0 && int64(len(data)) > declaredSize*3/2 {
		return data, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
