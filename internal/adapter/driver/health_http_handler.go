package driver

import (
	"net/http"

	"github.com/alorle/addon-playlist/internal/application"
)

// HealthHTTPHandler handles HTTP requests for health checks.
type HealthHTTPHandler struct {
	service *application.HealthService
}

// NewHealthHTTPHandler creates a new HTTP handler for health checks.
func NewHealthHTTPHandler(service *application.HealthService) *HealthHTTPHandler {
	return &HealthHTTPHandler{service: service}
}

// componentResponse is the health of one dependency.
type componentResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthResponse represents the JSON response for health check endpoint.
type healthResponse struct {
	Status   string            `json:"status"`
	Metadata componentResponse `json:"metadata"`
	Playlist componentResponse `json:"playlist"`
}

// ServeHTTP handles GET /health
func (h *HealthHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only GET method is allowed
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := h.service.Check(r.Context())

	resp := healthResponse{
		Status:   status.Status,
		Metadata: componentResponse{Status: status.Metadata.Status, Error: status.Metadata.Error},
		Playlist: componentResponse{Status: status.Playlist.Status, Error: status.Playlist.Error},
	}

	// Determine HTTP status code
	httpStatus := http.StatusOK
	if status.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
