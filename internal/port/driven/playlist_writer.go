package driven

import (
	"context"

	"github.com/alorle/addon-playlist/internal/content"
)

// PlaylistWriter defines the interface for publishing the playlist.
type PlaylistWriter interface {
	// Write serializes items and replaces the published playlist as a whole.
	Write(ctx context.Context, items []content.Item) error

	// Path returns the location of the published playlist.
	Path() string
}
