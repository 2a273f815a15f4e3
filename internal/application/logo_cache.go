package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alorle/addon-playlist/internal/logo"
	"github.com/alorle/addon-playlist/internal/port/driven"
	"github.com/alorle/addon-playlist/metrics"
)

// LogoCache is the two-tier logo store: an in-process map in front of the
// persistent metadata repository, plus the directory of downloaded images.
//
// Memory hits are trusted for the lifetime of the process. Expiry and the
// presence of the backing file are only checked when an entry is read from
// the persistent store.
type LogoCache struct {
	repo       driven.LogoMetadataRepository
	downloader driven.ImageDownloader
	dir        string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu     sync.RWMutex
	memory map[string]logo.Entry
}

// NewLogoCache creates a cache storing downloaded files in dir, which is created if absent.
// A zero ttl means logo.TTL.
func NewLogoCache(repo driven.LogoMetadataRepository, downloader driven.ImageDownloader, dir string, ttl time.Duration, logger *slog.Logger) (*LogoCache, error) {
	if repo == nil {
		return nil, errors.New("logo metadata repository cannot be nil")
	}
	if dir == "" {
		return nil, errors.New("logo cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating logo cache directory: %w", err)
	}
	if ttl <= 0 {
		ttl = logo.TTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoCache{
		repo:       repo,
		downloader: downloader,
		dir:        dir,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
		memory:     make(map[string]logo.Entry),
	}, nil
}

// Dir returns the directory holding downloaded logo files.
func (c *LogoCache) Dir() string {
	return c.dir
}

// Get returns the live entry for a channel name. Expired entries and entries
// whose downloaded file disappeared are evicted and reported as absent.
func (c *LogoCache) Get(ctx context.Context, name string) (logo.Entry, bool) {
	key := logo.Key(name)
	if key == "" {
		return logo.Entry{}, false
	}

	c.mu.RLock()
	e, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheLookup("memory")
		return e, true
	}

	e, err := c.repo.Get(ctx, key)
	if errors.Is(err, logo.ErrEntryNotFound) {
		metrics.RecordCacheLookup("miss")
		return logo.Entry{}, false
	}
	if err != nil {
		c.logger.Warn("failed to read logo metadata", "key", key, "error", err)
		metrics.RecordCacheLookup("miss")
		return logo.Entry{}, false
	}

	if e.IsExpired(c.now(), c.ttl) {
		c.logger.Debug("logo cache entry expired", "key", key, "timestamp", e.Timestamp)
		c.evict(ctx, e)
		metrics.RecordCacheLookup("expired")
		return logo.Entry{}, false
	}
	if e.LocalPath != "" && !fileExists(e.LocalPath) {
		c.logger.Debug("logo file missing, evicting entry", "key", key, "path", e.LocalPath)
		c.evict(ctx, e)
		metrics.RecordCacheLookup("stale")
		return logo.Entry{}, false
	}

	c.mu.Lock()
	c.memory[key] = e
	c.mu.Unlock()
	metrics.RecordCacheLookup("hit")
	return e, true
}

// Put stores url for a channel name and returns the reference to publish.
// Remote images from any source but the placeholder are downloaded first; a
// failed download keeps the bare URL. Persistence failures are logged only.
// Nothing is recorded once ctx is done.
func (c *LogoCache) Put(ctx context.Context, name, url string, source logo.Source) string {
	key := logo.Key(name)

	localPath := ""
	if source != logo.SourcePlaceholder && logo.IsRemote(url) && c.downloader != nil && key != "" {
		dest := filepath.Join(c.dir, logo.FileName(key, url))
		if _, err := c.downloader.Download(ctx, url, dest); err != nil {
			c.logger.Warn("logo download failed, caching url", "key", key, "url", url, "error", err)
		} else {
			localPath = dest
		}
	}

	e, err := logo.NewEntry(key, url, localPath, source, c.now())
	if err != nil {
		c.logger.Warn("refusing to cache logo", "name", name, "url", url, "error", err)
		return url
	}

	if ctx.Err() != nil {
		c.logger.Debug("not caching logo for cancelled request", "key", e.Key, "error", ctx.Err())
		return e.Reference()
	}

	c.mu.Lock()
	c.memory[e.Key] = e
	c.mu.Unlock()

	if err := c.repo.Put(ctx, e); err != nil {
		c.logger.Warn("failed to persist logo metadata", "key", e.Key, "error", err)
	}
	return e.Reference()
}

// Evict removes the entry for a channel name, its downloaded file included.
func (c *LogoCache) Evict(ctx context.Context, name string) error {
	key := logo.Key(name)
	if key == "" {
		return logo.ErrEmptyKey
	}

	c.mu.RLock()
	e, ok := c.memory[key]
	c.mu.RUnlock()
	if !ok {
		stored, err := c.repo.Get(ctx, key)
		switch {
		case errors.Is(err, logo.ErrEntryNotFound):
			e = logo.Entry{Key: key}
		case err != nil:
			return fmt.Errorf("reading logo metadata: %w", err)
		default:
			e = stored
		}
	}

	return c.evict(ctx, e)
}

func (c *LogoCache) evict(ctx context.Context, e logo.Entry) error {
	if e.LocalPath != "" {
		if err := os.Remove(e.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("failed to remove logo file", "path", e.LocalPath, "error", err)
		}
	}

	c.mu.Lock()
	delete(c.memory, e.Key)
	c.mu.Unlock()

	if err := c.repo.Delete(ctx, e.Key); err != nil {
		c.logger.Warn("failed to delete logo metadata", "key", e.Key, "error", err)
		return fmt.Errorf("deleting logo metadata: %w", err)
	}
	return nil
}

// Clear drops the in-memory tier. Persisted entries and files are kept.
func (c *LogoCache) Clear() {
	c.mu.Lock()
	c.memory = make(map[string]logo.Entry)
	c.mu.Unlock()
}

// Sweep evicts every persisted entry that is expired or lost its file and
// returns how many were removed.
func (c *LogoCache) Sweep(ctx context.Context) (int, error) {
	entries, err := c.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing logo metadata: %w", err)
	}

	now := c.now()
	evicted := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		if !e.IsExpired(now, c.ttl) && (e.LocalPath == "" || fileExists(e.LocalPath)) {
			continue
		}
		if err := c.evict(ctx, e); err != nil {
			continue
		}
		evicted++
	}

	c.logger.Info("logo cache swept", "checked", len(entries), "evicted", evicted)
	return evicted, nil
}

// Entries lists the persisted entries.
func (c *LogoCache) Entries(ctx context.Context) ([]logo.Entry, error) {
	return c.repo.FindAll(ctx)
}

// Ping checks the persistent store.
func (c *LogoCache) Ping(ctx context.Context) error {
	return c.repo.Ping(ctx)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
