package driven

import (
	"context"

	"github.com/alorle/addon-playlist/internal/logo"
)

// LogoMetadataRepository defines the interface for persisting logo cache entries.
// This is a driven port implemented by concrete adapters (e.g., JSON file, BoltDB).
type LogoMetadataRepository interface {
	// Get retrieves the entry for key. Returns logo.ErrEntryNotFound if absent.
	Get(ctx context.Context, key string) (logo.Entry, error)

	// Put stores e, replacing any entry with the same key.
	Put(ctx context.Context, e logo.Entry) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// FindAll retrieves every stored entry.
	FindAll(ctx context.Context) ([]logo.Entry, error)

	// Ping checks if the underlying store is accessible and operational.
	Ping(ctx context.Context) error
}
