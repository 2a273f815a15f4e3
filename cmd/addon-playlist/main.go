package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"
	"go.uber.org/ratelimit"

	"github.com/alorle/addon-playlist/circuitbreaker"
	"github.com/alorle/addon-playlist/config"
	"github.com/alorle/addon-playlist/internal/adapter/driven"
	"github.com/alorle/addon-playlist/internal/adapter/driver"
	"github.com/alorle/addon-playlist/internal/application"
	port "github.com/alorle/addon-playlist/internal/port/driven"
)

const (
	imagesDir       = "images"
	boltFileName    = "metadata.db"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting addon-playlist", cfg.LogAttrs()...)

	// Create driven adapters
	source, err := driven.NewAddonHTTPSource(toAddons(cfg.Addons), nil, logger)
	if err != nil {
		log.Fatalf("failed to create addon source: %v", err)
	}

	writer, err := driven.NewPlaylistFileWriter(cfg.Playlist.OutputPath, cfg.Playlist.PublicBaseURL, logger)
	if err != nil {
		log.Fatalf("failed to create playlist writer: %v", err)
	}

	// Logo subsystem, only wired when enabled
	var (
		resolver     application.Resolver
		sweeper      application.Sweeper
		metadata     application.Pinger
		logoCache    *application.LogoCache
		logoResolver *application.LogoResolver
	)
	if cfg.Logos.Enabled {
		repo, closeRepo, err := openMetadataRepository(cfg.Logos)
		if err != nil {
			log.Fatalf("failed to open logo metadata: %v", err)
		}
		defer func() {
			if err := closeRepo(); err != nil {
				logger.Error("error closing logo metadata", "error", err)
			}
		}()

		downloader := driven.NewImageHTTPDownloader(&http.Client{Timeout: cfg.Logos.DownloadTimeout}, logger)
		logoCache, err = application.NewLogoCache(repo, downloader, filepath.Join(cfg.Logos.CacheDir, imagesDir), cfg.Logos.TTL, logger)
		if err != nil {
			log.Fatalf("failed to create logo cache: %v", err)
		}

		breaker := circuitbreaker.New(circuitbreaker.Config{
			Name:             "wikimedia",
			FailureThreshold: cfg.Resilience.CBFailureThreshold,
			Timeout:          cfg.Resilience.CBTimeout,
			HalfOpenRequests: cfg.Resilience.CBHalfOpenRequests,
			IsFailure:        driven.IsIndexFailure,
			Logger:           logger,
		})
		index := driven.NewWikimediaHTTPIndex(
			cfg.Logos.IndexURL,
			&http.Client{Timeout: cfg.Logos.IndexTimeout},
			breaker,
			ratelimit.New(cfg.Logos.RateLimit),
			logger,
		)

		logoResolver = application.NewLogoResolver(logoCache, index, logger)
		resolver = logoResolver
		sweeper = logoCache
		metadata = logoCache
	}

	// Create application services
	playlistService := application.NewPlaylistService(source, writer, resolver, application.PlaylistConfig{
		LogosEnabled: cfg.Logos.Enabled,
		BatchSize:    cfg.Logos.BatchSize,
		BatchPause:   cfg.Logos.BatchPause,
	}, logger)
	healthService := application.NewHealthService(metadata, playlistService)
	scheduler := application.NewScheduler(playlistService, sweeper, cfg.Playlist.RefreshInterval, cfg.Logos.SweepInterval, logger)

	// Create HTTP handlers
	spec, err := driver.LoadAPISpec()
	if err != nil {
		log.Fatalf("failed to load API description: %v", err)
	}

	routes := driver.Routes{
		Playlist:    driver.NewPlaylistHTTPHandler(playlistService),
		PlaylistAPI: driver.NewPlaylistAPIHTTPHandler(playlistService, logger),
		Health:      driver.NewHealthHTTPHandler(healthService),
		Metrics:     promhttp.Handler(),
	}
	if logoCache != nil {
		routes.Logos = driver.NewLogoHTTPHandler(logoCache, logoResolver)
		routes.LogoFiles = driver.NewLogoFileHandler(os.DirFS(logoCache.Dir()))
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      driver.NewRouter(spec, routes),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // POST /api/refresh runs a whole phase 1
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	<-schedulerDone

	if err := playlistService.WaitForEnhancement(shutdownCtx); err != nil {
		logger.Warn("logo enhancement still running at shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// openMetadataRepository opens the configured logo metadata backend. The
// returned function releases it.
func openMetadataRepository(cfg config.LogosConfig) (port.LogoMetadataRepository, func() error, error) {
	switch cfg.MetadataBackend {
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating cache directory: %w", err)
		}
		db, err := bbolt.Open(filepath.Join(cfg.CacheDir, boltFileName), 0600, &bbolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		repo, err := driven.NewLogoMetadataBoltDBRepository(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		repo, err := driven.NewLogoMetadataJSONRepository(filepath.Join(cfg.CacheDir, driven.MetadataFileName))
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	}
}

func toAddons(in []config.Addon) []driven.Addon {
	out := make([]driven.Addon, 0, len(in))
	for _, a := range in {
		catalogs := make([]driven.Catalog, 0, len(a.Catalogs))
		for _, c := range a.Catalogs {
			catalogs = append(catalogs, driven.Catalog{Type: c.Type, ID: c.ID})
		}
		out = append(out, driven.Addon{Name: a.Name, URL: a.URL, Catalogs: catalogs})
	}
	return out
}
