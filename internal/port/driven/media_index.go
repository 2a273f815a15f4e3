package driven

import "context"

// MediaIndex defines the interface for searching a public media file index
// for logo images.
type MediaIndex interface {
	// Search returns file titles matching term, in the index's relevance order.
	Search(ctx context.Context, term string) ([]string, error)

	// ResolveFileURL returns the image URL for an exact file title, preferring
	// a reduced-width thumbnail over the original file.
	// Returns logo.ErrNoImageInfo when the index has no usable URL for the file.
	ResolveFileURL(ctx context.Context, fileTitle string) (string, error)
}
