package logo

import "errors"

// Domain errors for logo resolution and caching.
var (
	ErrEmptyKey         = errors.New("logo cache key cannot be empty")
	ErrEmptyURL         = errors.New("logo url cannot be empty")
	ErrInvalidSource    = errors.New("invalid logo source")
	ErrEntryNotFound    = errors.New("logo cache entry not found")
	ErrEmptyDownload    = errors.New("downloaded logo is empty")
	ErrNoImageInfo      = errors.New("media index returned no image info")
	ErrIndexUnavailable = errors.New("media index unavailable")
)
