package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"whisperq/internal/whisper"
)

// Downloader fetches model files into a local models directory.
type Downloader struct {
	client  *http.Client
	baseURL string
}

// DownloaderOption configures optional Downloader behavior.
type DownloaderOption func(*Downloader)

// WithBaseURL points the downloader at an alternate model repository.
func WithBaseURL(baseURL string) DownloaderOption {
	return func(d *Downloader) {
		if baseURL != "" {
			d.baseURL = baseURL
		}
	}
}

// NewDownloader builds a downloader. Large models take a while, so the
// client carries no overall timeout; cancellation comes from the context.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		baseURL: repositoryBase,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches a builtin model into modelsDir. The file is written to a
// temporary name and renamed into place only after the payload validates as
// a ggml image, so an interrupted download never leaves a usable-looking
// partial file behind.
//
// onProgress, when non-nil, receives (downloaded, total) byte counts; total
// is -1 when the server does not announce a length.
func (d *Downloader) Download(ctx context.Context, modelsDir, name string, onProgress func(downloaded, total int64)) error {
	info, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown model %q", name)
	}
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	url := fmt.Sprintf("%s/%s", d.baseURL, FileName(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", info.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: server returned %s", info.Name, resp.Status)
	}

	finalPath := Path(modelsDir, name)
	tmp, err := os.CreateTemp(modelsDir, FileName(name)+".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	total := resp.ContentLength
	reader := io.Reader(resp.Body)
	if onProgress != nil {
		reader = &progressReader{inner: resp.Body, total: total, onProgress: onProgress}
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", info.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush download: %w", err)
	}

	if _, err := whisper.LoadModel(tmpPath); err != nil {
		return fmt.Errorf("downloaded payload for %s is not a valid model: %w", info.Name, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("install model: %w", err)
	}
	return nil
}

type progressReader struct {
	inner      io.Reader
	downloaded int64
	total      int64
	onProgress func(downloaded, total int64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		r.onProgress(r.downloaded, r.total)
	}
	return n, err
}
