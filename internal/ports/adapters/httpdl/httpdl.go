// Package httpdl downloads remote documents to local temp files.
package httpdl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"mdnotes/internal/ports"
)

const requestTimeout = 60 * time.Second

// 100 MB cap keeps a misbehaving server from filling the disk.
const maxDownloadBytes = 100 << 20

type Downloader struct {
	client *http.Client
}

func New() *Downloader {
	return &Downloader{client: &http.Client{Timeout: 2 * time.Minute}}
}

// Download fetches url into a temp file and returns its path. The caller
// removes the file when done.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("download timeout after %s: %s", requestTimeout, url)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	f, err := os.CreateTemp("", "mdnotes-dl-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write download: %w", err)
	}
	if n > maxDownloadBytes {
		os.Remove(f.Name())
		return "", fmt.Errorf("download %s exceeds %d bytes", url, maxDownloadBytes)
	}
	if n == 0 {
		os.Remove(f.Name())
		return "", fmt.Errorf("download %s: empty response body", url)
	}
	return f.Name(), nil
}

var _ ports.Downloader = (*Downloader)(nil)
