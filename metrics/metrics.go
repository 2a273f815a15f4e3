package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LogoResolutions counts finished logo resolutions by the step that produced them
	LogoResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addon_playlist_logo_resolutions_total",
		Help: "Total number of logo resolutions by source",
	}, []string{"source"})

	// LogoCacheLookups counts cache lookups by result (hit, miss, expired)
	LogoCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addon_playlist_logo_cache_lookups_total",
		Help: "Total number of logo cache lookups by result",
	}, []string{"result"})

	// IndexRequests counts media index calls by operation and outcome
	IndexRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addon_playlist_index_requests_total",
		Help: "Total number of media index requests",
	}, []string{"operation", "outcome"})

	// LogoDownloads counts logo image downloads by outcome
	LogoDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addon_playlist_logo_downloads_total",
		Help: "Total number of logo downloads by outcome",
	}, []string{"outcome"})

	// PlaylistWrites counts playlist file writes by generation phase
	PlaylistWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "addon_playlist_playlist_writes_total",
		Help: "Total number of playlist writes by phase",
	}, []string{"phase"})

	// GenerationDuration observes how long the fetch-and-write phase takes
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "addon_playlist_generation_duration_seconds",
		Help:    "Duration of the initial playlist generation",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	// LogosImproved counts items whose logo changed during background enhancement
	LogosImproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "addon_playlist_logos_improved_total",
		Help: "Total number of playlist items whose logo was improved",
	})

	// CircuitBreakerState tracks the current state of circuit breakers
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "addon_playlist_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})
)

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(name, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(value)
}

// RecordLogoResolution increments the resolution counter for a source
func RecordLogoResolution(source string) {
	LogoResolutions.WithLabelValues(source).Inc()
}

// RecordCacheLookup increments the cache lookup counter for a result
func RecordCacheLookup(result string) {
	LogoCacheLookups.WithLabelValues(result).Inc()
}

// RecordIndexRequest increments the media index request counter
func RecordIndexRequest(operation, outcome string) {
	IndexRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordLogoDownload increments the download counter for an outcome
func RecordLogoDownload(outcome string) {
	LogoDownloads.WithLabelValues(outcome).Inc()
}

// RecordPlaylistWrite increments the playlist write counter for a phase
func RecordPlaylistWrite(phase string) {
	PlaylistWrites.WithLabelValues(phase).Inc()
}

// ObserveGeneration records the duration of an initial generation
func ObserveGeneration(d time.Duration) {
	GenerationDuration.Observe(d.Seconds())
}

// AddLogosImproved adds n to the improved logos counter
func AddLogosImproved(n int) {
	LogosImproved.Add(float64(n))
}
