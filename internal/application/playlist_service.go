package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alorle/addon-playlist/internal/content"
	"github.com/alorle/addon-playlist/internal/port/driven"
	"github.com/alorle/addon-playlist/metrics"
)

const (
	defaultBatchSize  = 3
	defaultBatchPause = time.Second
)

// ErrGenerationInProgress is returned by Generate while another generation runs.
var ErrGenerationInProgress = errors.New("playlist generation already in progress")

// Resolver yields a logo reference for a channel name; fallback is the
// reference to use when nothing better is found.
type Resolver interface {
	Resolve(ctx context.Context, name, fallback string) string
}

// PlaylistConfig tunes the background logo enhancement.
type PlaylistConfig struct {
	LogosEnabled bool
	BatchSize    int           // items resolved concurrently; 0 means 3
	BatchPause   time.Duration // pause between batches; negative means 1s, 0 disables it
}

// PlaylistStatus is a snapshot of the generator state.
type PlaylistStatus struct {
	Generating               bool
	LastSuccessfulGeneration time.Time // zero before the first success
	Items                    int
}

// PlaylistService publishes the playlist in two phases. Phase 1 fetches
// content and writes it immediately with the logos the addons provided.
// Phase 2 runs detached afterwards, resolves better logos in small batches
// and rewrites the playlist only when at least one logo changed.
type PlaylistService struct {
	source   driven.ContentSource
	writer   driven.PlaylistWriter
	resolver Resolver
	cfg      PlaylistConfig
	logger   *slog.Logger
	now      func() time.Time

	generating atomic.Bool

	// mu guards the fields below and serializes playlist writes.
	mu          sync.RWMutex
	items       []content.Item
	lastSuccess time.Time
	generation  uint64

	background sync.WaitGroup
}

// NewPlaylistService creates a PlaylistService. resolver may be nil when logos are disabled.
func NewPlaylistService(source driven.ContentSource, writer driven.PlaylistWriter, resolver Resolver, cfg PlaylistConfig, logger *slog.Logger) *PlaylistService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = defaultBatchPause
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistService{
		source:   source,
		writer:   writer,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs phase 1 and returns its outcome. Whatever that outcome, it
// then starts phase 2 over the last successfully fetched content.
// A call made while another Generate runs returns ErrGenerationInProgress
// without side effects.
func (s *PlaylistService) Generate(ctx context.Context) error {
	if !s.generating.CompareAndSwap(false, true) {
		s.logger.Info("playlist generation already running, skipping")
		return ErrGenerationInProgress
	}

	logger := s.logger.With("run_id", uuid.NewString())
	err := s.generate(ctx, logger)
	s.generating.Store(false)

	s.startEnhancement(logger)
	return err
}

func (s *PlaylistService) generate(ctx context.Context, logger *slog.Logger) error {
	start := time.Now()
	logger.Info("playlist generation started")

	items, err := s.source.FetchContent(ctx)
	if err != nil {
		logger.Error("failed to fetch content", "error", err)
		return fmt.Errorf("fetching content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Write(ctx, items); err != nil {
		logger.Error("failed to write playlist", "error", err)
		return fmt.Errorf("writing playlist: %w", err)
	}

	s.items = items
	s.lastSuccess = s.now()
	s.generation++

	metrics.RecordPlaylistWrite("initial")
	metrics.ObserveGeneration(time.Since(start))
	logger.Info("playlist generated", "items", len(items), "path", s.writer.Path(), "duration", time.Since(start))
	return nil
}

func (s *PlaylistService) startEnhancement(logger *slog.Logger) {
	if !s.cfg.LogosEnabled || s.resolver == nil {
		return
	}

	s.mu.RLock()
	items := content.Clone(s.items)
	generation := s.generation
	s.mu.RUnlock()

	if len(items) == 0 {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.enhance(context.Background(), logger, items, generation)
	}()
}

// enhance resolves logos for items batch by batch and republishes them if
// anything changed and no newer phase 1 has been published meanwhile.
func (s *PlaylistService) enhance(ctx context.Context, logger *slog.Logger, items []content.Item, generation uint64) {
	logger.Info("logo enhancement started", "items", len(items))

	var changed atomic.Int64
	for start := 0; start < len(items); start += s.cfg.BatchSize {
		if start > 0 && s.cfg.BatchPause > 0 {
			time.Sleep(s.cfg.BatchPause)
		}
		end := min(start+s.cfg.BatchSize, len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(item *content.Item) {
				defer wg.Done()
				if s.enhanceItem(ctx, logger, item) {
					changed.Add(1)
				}
			}(&items[i])
		}
		wg.Wait()
	}

	n := int(changed.Load())
	if n == 0 {
		logger.Info("logo enhancement finished, no logos changed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		logger.Info("newer playlist published during logo enhancement, discarding rewrite", "changed", n)
		return
	}

	if err := s.writer.Write(ctx, items); err != nil {
		logger.Warn("failed to write enhanced playlist", "error", err)
		return
	}

	s.items = items
	s.lastSuccess = s.now()

	metrics.RecordPlaylistWrite("enhanced")
	metrics.AddLogosImproved(n)
	logger.Info("logo enhancement finished, playlist rewritten", "changed", n)
}

// enhanceItem replaces item.Poster with the resolved logo and reports whether it changed.
func (s *PlaylistService) enhanceItem(ctx context.Context, logger *slog.Logger, item *content.Item) (changed bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("logo enhancement failed for item", "id", item.ID, "title", item.Title, "panic", p)
			changed = false
		}
	}()

	ref := s.resolver.Resolve(ctx, item.Title, item.Poster)
	if ref == "" || ref == item.Poster {
		return false
	}
	item.Poster = ref
	return true
}

// WaitForEnhancement blocks until every running phase 2 has finished or ctx is done.
func (s *PlaylistService) WaitForEnhancement(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastSuccessfulGeneration returns when the playlist was last written, and
// false if it never was.
func (s *PlaylistService) LastSuccessfulGeneration() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSuccess, !s.lastSuccess.IsZero()
}

// Status returns the generator state.
func (s *PlaylistService) Status() PlaylistStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PlaylistStatus{
		Generating:               s.generating.Load(),
		LastSuccessfulGeneration: s.lastSuccess,
		Items:                    len(s.items),
	}
}

// Items returns a copy of the last published content.
func (s *PlaylistService) Items() []content.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return content.Clone(s.items)
}

// PlaylistPath returns where the playlist is published.
func (s *PlaylistService) PlaylistPath() string {
	return s.writer.Path()
}
