package content

import "errors"

// Domain errors for addon content.
var (
	ErrEmptyTitle     = errors.New("content item title cannot be empty")
	ErrEmptyID        = errors.New("content item id cannot be empty")
	ErrNoStreams      = errors.New("content item has no playable streams")
	ErrEmptyAddonURL  = errors.New("addon url cannot be empty")
	ErrCatalogMissing = errors.New("addon exposes no catalogs")
)
