package driven

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alorle/addon-playlist/internal/content"
	"github.com/alorle/addon-playlist/internal/logo"
	"github.com/alorle/addon-playlist/internal/m3u"
)

// LogoRoute is the HTTP path prefix under which downloaded logos are served.
const LogoRoute = "/logos/"

// PlaylistFileWriter publishes the playlist as an M3U file on disk.
// It implements the driven.PlaylistWriter port.
type PlaylistFileWriter struct {
	path          string
	publicBaseURL string
	logger        *slog.Logger

	mu sync.Mutex
}

// NewPlaylistFileWriter creates a writer for path, creating its directory if needed.
// When publicBaseURL is set, local logo files are referenced through LogoRoute on that base.
func NewPlaylistFileWriter(path, publicBaseURL string, logger *slog.Logger) (*PlaylistFileWriter, error) {
	if path == "" {
		return nil, errors.New("playlist path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating playlist directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistFileWriter{
		path:          path,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Path returns the playlist file location.
func (w *PlaylistFileWriter) Path() string {
	return w.path
}

// Write encodes one playlist entry per playable stream of every item and
// replaces the playlist file atomically.
func (w *PlaylistFileWriter) Write(ctx context.Context, items []content.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := m3u.NewEncoder()
	for _, it := range items {
		for _, s := range it.PlayableStreams() {
			title := it.Title
			if s.Title != "" && s.Title != it.Title {
				title = it.Title + " - " + s.Title
			}
			enc.Add(&m3u.Entry{
				Title:    title,
				URI:      s.URL,
				Duration: it.Duration,
				TVGTags: &m3u.TVGTags{
					ID:         it.ID,
					Name:       it.Title,
					Logo:       w.logoURL(it.Poster),
					GroupTitle: it.Genre,
				},
			})
		}
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf); err != nil {
		return fmt.Errorf("encoding playlist: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := writeFileAtomic(w.path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}

	w.logger.Debug("playlist written", "path", w.path, "entries", enc.Len())
	return nil
}

// logoURL turns a cached local logo path into a URL players can fetch.
func (w *PlaylistFileWriter) logoURL(ref string) string {
	if ref == "" || logo.IsRemote(ref) || w.publicBaseURL == "" {
		return ref
	}
	return w.publicBaseURL + LogoRoute + url.PathEscape(filepath.Base(ref))
}
