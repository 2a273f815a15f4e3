package driver

import (
	"net/http"

	"github.com/alorle/addon-playlist/internal/application"
)

// PlaylistHTTPHandler serves the last published playlist file.
type PlaylistHTTPHandler struct {
	service *application.PlaylistService
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.PlaylistService) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{service: service}
}

// ServeHTTP handles GET /playlist.m3u
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only GET and HEAD are allowed
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if _, ok := h.service.LastSuccessfulGeneration(); !ok {
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, "playlist not generated yet")
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, h.service.PlaylistPath())
}
