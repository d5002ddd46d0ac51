package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"WikiAnswers/internal/ports"
)

const chunkSize = 32 * 1024

// Downloader fetches image bytes over HTTP in bounded chunks.
type Downloader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

var _ ports.Downloader = (*Downloader)(nil)

// NewDownloader wires an HTTP client; maxBytes caps a single image payload.
func NewDownloader(client *http.Client, userAgent string, maxBytes int) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Downloader{client: client, userAgent: userAgent, maxBytes: int64(maxBytes)}
}

// Download performs one GET and buffers the body. A non-200 status or a body
// larger than maxBytes is an error; the caller decides whether the batch
// continues.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("download %s: payload %d exceeds limit %d", url, resp.ContentLength, d.maxBytes)
	}

	// Read one byte past the limit so an oversized body is detected rather
	// than truncated.
	var buf bytes.Buffer
	if _, err := io.CopyBuffer(&buf, io.LimitReader(resp.Body, d.maxBytes+1), make([]byte, chunkSize)); err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(buf.Len()) > d.maxBytes {
		return nil, fmt.Errorf("download %s: payload exceeds limit %d", url, d.maxBytes)
	}

	return buf.Bytes(), nil
}
