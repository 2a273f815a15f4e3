package driver

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alorle/addon-playlist/internal/application"
	"github.com/alorle/addon-playlist/internal/logo"
)

// LogoHTTPHandler exposes the logo cache and resolver.
type LogoHTTPHandler struct {
	cache    *application.LogoCache
	resolver *application.LogoResolver
}

// NewLogoHTTPHandler creates a new HTTP handler for logo management.
func NewLogoHTTPHandler(cache *application.LogoCache, resolver *application.LogoResolver) *LogoHTTPHandler {
	return &LogoHTTPHandler{cache: cache, resolver: resolver}
}

// logoEntryResponse represents a cache entry in JSON format.
type logoEntryResponse struct {
	Key       string  `json:"key"`
	URL       string  `json:"url"`
	LocalPath *string `json:"local_path"`
	File      string  `json:"file,omitempty"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
}

// sweepResponse reports how many entries a sweep removed.
type sweepResponse struct {
	Evicted int `json:"evicted"`
}

// resolveResponse is the outcome of resolving one channel name.
type resolveResponse struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *LogoHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/logos")

	switch {
	// GET /logos - list cache entries
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	// DELETE /logos - clear the in-memory tier
	case path == "" && r.Method == http.MethodDelete:
		h.cache.Clear()
		w.WriteHeader(http.StatusNoContent)
	// POST /logos/sweep - evict expired entries
	case path == "/sweep" && r.Method == http.MethodPost:
		h.handleSweep(w, r)
	// GET /logos/resolve?name=...&fallback=...
	case path == "/resolve" && r.Method == http.MethodGet:
		h.handleResolve(w, r)
	case path == "" || path == "/sweep" || path == "/resolve":
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleList handles GET /logos
func (h *LogoHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.cache.Entries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]logoEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toLogoEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSweep handles POST /logos/sweep
func (h *LogoHTTPHandler) handleSweep(w http.ResponseWriter, r *http.Request) {
	evicted, err := h.cache.Sweep(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{Evicted: evicted})
}

// handleResolve handles GET /logos/resolve
func (h *LogoHTTPHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ref := h.resolver.Resolve(r.Context(), name, r.URL.Query().Get("fallback"))
	writeJSON(w, http.StatusOK, resolveResponse{Name: name, Reference: ref})
}

// toLogoEntryResponse converts a domain entry to its JSON representation.
func toLogoEntryResponse(e logo.Entry) logoEntryResponse {
	resp := logoEntryResponse{
		Key:       e.Key,
		URL:       e.URL,
		Source:    string(e.Source),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.LocalPath != "" {
		localPath := e.LocalPath
		resp.LocalPath = &localPath
		resp.File = filepath.Base(e.LocalPath)
	}
	return resp
}
