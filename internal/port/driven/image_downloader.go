package driven

import "context"

// ImageDownloader defines the interface for persisting a remote image to disk.
type ImageDownloader interface {
	// Download stores the resource at url in destPath and returns its size.
	// A zero-byte response is reported as logo.ErrEmptyDownload and leaves no file behind.
	Download(ctx context.Context, url, destPath string) (int64, error)
}
