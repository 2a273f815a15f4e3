package driver

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/alorle/addon-playlist/internal/adapter/driven"
)

// Routes groups the handlers mounted by NewRouter. Logos and LogoFiles may be
// nil when logo enhancement is disabled.
type Routes struct {
	Playlist    http.Handler
	PlaylistAPI http.Handler
	Logos       http.Handler
	LogoFiles   http.Handler
	Health      http.Handler
	Metrics     http.Handler
}

// NewRouter builds the root handler: the validated JSON API under /api, the
// playlist file, downloaded logos and the metrics endpoint.
func NewRouter(spec *openapi3.T, routes Routes) http.Handler {
	apiMux := http.NewServeMux()
	apiMux.Handle("/refresh", routes.PlaylistAPI)
	apiMux.Handle("/status", routes.PlaylistAPI)
	apiMux.Handle("/health", routes.Health)
	apiMux.Handle("/openapi.json", NewDocumentationHandler(spec))
	if routes.Logos != nil {
		apiMux.Handle("/logos", routes.Logos)
		apiMux.Handle("/logos/", routes.Logos)
	}

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", http.StripPrefix("/api", NewRequestValidator(spec)(apiMux)))
	rootMux.Handle("/playlist.m3u", routes.Playlist)
	if routes.LogoFiles != nil {
		rootMux.Handle(driven.LogoRoute, http.StripPrefix(driven.LogoRoute, routes.LogoFiles))
	}
	if routes.Metrics != nil {
		rootMux.Handle("/metrics", routes.Metrics)
	}
	return rootMux
}
