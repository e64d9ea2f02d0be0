// Package fetch provides the HTTP plumbing used to reach icon sources: bounded
// GETs for API responses and atomic file downloads for whole collections.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// MaxBody caps responses read into memory by Get.
const MaxBody = 32 << 20

// ErrTooLarge is returned by Get when a response exceeds the body limit.
var ErrTooLarge = errors.New("response too large")

// Downloader handles HTTP requests with a fixed per-request timeout.
type Downloader struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewDownloader creates a downloader with the specified timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		userAgent: "go-drift-icons",
		maxBody:   MaxBody,
	}
}

// NewDownloaderWithClient wraps an existing client, e.g. httptest.Server.Client().
func NewDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{client: client, userAgent: "go-drift-icons", maxBody: MaxBody}
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s", e.URL, e.Status)
}

func (d *Downloader) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
	}
	return resp, nil
}

// Get fetches url and returns the response body. Bodies larger than MaxBody
// fail with ErrTooLarge.
func (d *Downloader) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > d.maxBody {
		return nil, fmt.Errorf("%s: %w (over %d bytes)", url, ErrTooLarge, d.maxBody)
	}
	return body, nil
}

// Download fetches the URL and writes it to destPath atomically.
// The file is first written to a temporary file in the same directory,
// then renamed to the final path on success.
func (d *Downloader) Download(ctx context.Context, url, destPath string) error {
	return d.download(ctx, url, destPath, "")
}

// DownloadVerified is Download with a SHA-256 check before the rename. On a
// mismatch destPath is left untouched and a *ChecksumError is returned.
func (d *Downloader) DownloadVerified(ctx context.Context, url, destPath, sha256Hex string) error {
	return d.download(ctx, url, destPath, sha256Hex)
}

func (d *Downloader) download(ctx context.Context, url, destPath, sha256Hex string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	resp, err := d.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmpFile, h), resp.Body); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if want := strings.TrimSpace(sha256Hex); want != "" {
		if actual := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(actual, want) {
			return &ChecksumError{File: destPath, Expected: want, Actual: actual}
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// ChecksumError is returned when a download's checksum doesn't match the expected value.
type ChecksumError struct {
	File     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s\nExpected: %s\nActual:   %s", e.File, e.Expected, e.Actual)
}
