package driven

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alorle/addon-playlist/internal/logo"
	"github.com/alorle/addon-playlist/metrics"
)

const (
	// UserAgent identifies this client to the media index and image hosts,
	// which reject anonymous clients.
	UserAgent = "AddonPlaylist/1.0 (channel logo lookup for M3U playlists; https://github.com/alorle/addon-playlist)"

	defaultDownloadTimeout = 10 * time.Second
	partialSuffix          = ".partial"
)

// ImageHTTPDownloader stores remote images on the local file system.
// It implements the driven.ImageDownloader port.
type ImageHTTPDownloader struct {
	client *http.Client
	logger *slog.Logger
}

// NewImageHTTPDownloader creates a downloader.
// If client is nil, it creates a default HTTP client with a 10-second timeout.
func NewImageHTTPDownloader(client *http.Client, logger *slog.Logger) *ImageHTTPDownloader {
	if client == nil {
		client = &http.Client{
			Timeout: defaultDownloadTimeout,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageHTTPDownloader{
		client: client,
		logger: logger,
	}
}

// Download fetches url and stores the body at destPath. The body is streamed
// into a sibling ".partial" file that is renamed into place once complete.
func (d *ImageHTTPDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	n, err := d.download(ctx, url, destPath)
	if err != nil {
		metrics.RecordLogoDownload("error")
		return 0, err
	}
	metrics.RecordLogoDownload("ok")
	d.logger.Debug("downloaded logo", "url", url, "path", destPath, "bytes", n)
	return n, nil
}

func (d *ImageHTTPDownloader) download(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP status: %d %s", resp.StatusCode, resp.Status)
	}

	partial := destPath + partialSuffix
	f, err := os.Create(partial)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial)
		return 0, fmt.Errorf("writing image: %w", err)
	}
	if n == 0 {
		os.Remove(partial)
		return 0, logo.ErrEmptyDownload
	}

	if err := os.Rename(partial, destPath); err != nil {
		os.Remove(partial)
		return 0, fmt.Errorf("renaming image: %w", err)
	}
	return n, nil
}
