// Package fetch downloads attachment files over HTTP with polite
// rate limiting.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// ErrExists reports that the target file is already present and
// overwriting was not requested.
var ErrExists = errors.New("file already exists")

// Config tunes a Fetcher.
type Config struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Overwrite         bool
}

// Fetcher downloads files sequentially, one polite request at a time.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	config  Config
}

// New creates a Fetcher. Zero config fields fall back to defaults:
// 60s timeout, 1 request per second, a pichaq User-Agent.
func New(config Config) *Fetcher {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}

	if config.UserAgent == "" {
		config.UserAgent = "pichaq/0.1"
	}

	return &Fetcher{
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		config:  config,
	}
}

// Fetch downloads rawURL into path and returns the number of bytes
// written. The file lands via a temp file in the target directory, so
// a failed download never leaves a partial file behind. Returns
// ErrExists when the target is present and Overwrite is off.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, path string) (int64, error) {
	if !f.config.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return 0, ErrExists
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pichaq-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to copy data: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	return written, nil
}
