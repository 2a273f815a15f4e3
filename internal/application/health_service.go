package application

import (
	"context"
	"errors"
)

// errNoPlaylist is reported while no playlist has been published and none is being generated.
var errNoPlaylist = errors.New("no playlist has been generated yet")

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PlaylistState exposes what the health check needs from the playlist generator.
type PlaylistState interface {
	Status() PlaylistStatus
}

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	metadata Pinger
	playlist PlaylistState
}

// NewHealthService creates a new health check service.
// metadata may be nil when the logo subsystem is disabled.
func NewHealthService(metadata Pinger, playlist PlaylistState) *HealthService {
	return &HealthService{
		metadata: metadata,
		playlist: playlist,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok", "pending", "disabled" or "error"
	Error  string // empty unless status is "error"
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status   string          // "ok" if all components are healthy, "degraded" otherwise
	Metadata ComponentHealth // logo metadata store
	Playlist ComponentHealth // published playlist
}

// Check performs health checks on all dependencies.
// Returns the overall health status and individual component statuses.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
	}

	switch {
	case s.metadata == nil:
		status.Metadata = ComponentHealth{Status: "disabled"}
	default:
		if err := s.metadata.Ping(ctx); err != nil {
			status.Metadata = ComponentHealth{
				Status: "error",
				Error:  err.Error(),
			}
			status.Status = "degraded"
		} else {
			status.Metadata = ComponentHealth{Status: "ok"}
		}
	}

	ps := s.playlist.Status()
	switch {
	case !ps.LastSuccessfulGeneration.IsZero():
		status.Playlist = ComponentHealth{Status: "ok"}
	case ps.Generating:
		status.Playlist = ComponentHealth{Status: "pending"}
	default:
		status.Playlist = ComponentHealth{
			Status: "error",
			Error:  errNoPlaylist.Error(),
		}
		status.Status = "degraded"
	}

	return status
}
