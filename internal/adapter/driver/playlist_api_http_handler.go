package driver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alorle/addon-playlist/internal/application"
)

// PlaylistAPIHTTPHandler handles on-demand generation and status requests.
type PlaylistAPIHTTPHandler struct {
	service *application.PlaylistService
	logger  *slog.Logger
}

// NewPlaylistAPIHTTPHandler creates a new HTTP handler for the playlist API.
func NewPlaylistAPIHTTPHandler(service *application.PlaylistService, logger *slog.Logger) *PlaylistAPIHTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistAPIHTTPHandler{service: service, logger: logger}
}

// refreshResponse is returned by a successful refresh.
type refreshResponse struct {
	Status string `json:"status"`
}

// statusResponse represents the generator state in JSON format.
type statusResponse struct {
	Generating               bool    `json:"generating"`
	LastSuccessfulGeneration *string `json:"last_successful_generation"`
	Items                    int     `json:"items"`
}

// ServeHTTP routes POST /refresh and GET /status.
func (h *PlaylistAPIHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/refresh" && r.Method == http.MethodPost:
		h.handleRefresh(w, r)
	case r.URL.Path == "/status" && r.Method == http.MethodGet:
		h.handleStatus(w, r)
	case r.URL.Path == "/refresh" || r.URL.Path == "/status":
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleRefresh handles POST /refresh
func (h *PlaylistAPIHTTPHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := h.service.Generate(r.Context())
	if errors.Is(err, application.ErrGenerationInProgress) {
		writeError(w, http.StatusConflict, "playlist generation already in progress")
		return
	}
	if err != nil {
		h.logger.Error("on-demand playlist generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "playlist generation failed")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Status: "generated"})
}

// handleStatus handles GET /status
func (h *PlaylistAPIHTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.service.Status()

	resp := statusResponse{
		Generating: st.Generating,
		Items:      st.Items,
	}
	if !st.LastSuccessfulGeneration.IsZero() {
		ts := st.LastSuccessfulGeneration.UTC().Format(time.RFC3339)
		resp.LastSuccessfulGeneration = &ts
	}

	writeJSON(w, http.StatusOK, resp)
}
