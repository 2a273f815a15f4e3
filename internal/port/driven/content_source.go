package driven

import (
	"context"

	"github.com/alorle/addon-playlist/internal/content"
)

// ContentSource defines the interface for fetching playlist content from addons.
// This is a driven port that will be implemented by concrete adapters (e.g., HTTP client).
type ContentSource interface {
	// FetchContent retrieves every item of every configured addon catalog.
	// An addon that cannot be reached makes the whole fetch fail.
	FetchContent(ctx context.Context) ([]content.Item, error)
}
