package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alorle/addon-playlist/internal/adapter/driven"
	"github.com/alorle/addon-playlist/internal/application"
	"github.com/alorle/addon-playlist/internal/content"
)

// mockContentSource is a mock implementation of driven.ContentSource for testing.
type mockContentSource struct {
	fetchFunc func(ctx context.Context) ([]content.Item, error)
}

func (m *mockContentSource) FetchContent(ctx context.Context) ([]content.Item, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return []content.Item{}, nil
}

func sampleItems() []content.Item {
	return []content.Item{
		{
			ID:      "tv:cnn",
			Title:   "CNN",
			Genre:   "News",
			Poster:  "https://addon.example.com/cnn.png",
			Streams: []content.Stream{{URL: "http://streams.example.com/cnn.m3u8"}},
		},
	}
}

// newTestPlaylistService wires a PlaylistService writing to a temporary file, logos disabled.
func newTestPlaylistService(t *testing.T, source *mockContentSource) *application.PlaylistService {
	t.Helper()
	writer, err := driven.NewPlaylistFileWriter(filepath.Join(t.TempDir(), "playlist.m3u"), "", nil)
	if err != nil {
		t.Fatalf("failed to create playlist writer: %v", err)
	}
	return application.NewPlaylistService(source, writer, nil, application.PlaylistConfig{}, nil)
}

// newTestLogoCache creates a cache backed by a JSON repository in a temporary directory.
func newTestLogoCache(t *testing.T) *application.LogoCache {
	t.Helper()
	dir := t.TempDir()
	repo, err := driven.NewLogoMetadataJSONRepository(filepath.Join(dir, driven.MetadataFileName))
	if err != nil {
		t.Fatalf("failed to create metadata repository: %v", err)
	}
	cache, err := application.NewLogoCache(repo, nil, filepath.Join(dir, "logos"), 0, nil)
	if err != nil {
		t.Fatalf("failed to create logo cache: %v", err)
	}
	return cache
}
