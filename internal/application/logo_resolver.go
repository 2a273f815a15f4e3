package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/alorle/addon-playlist/internal/logo"
	"github.com/alorle/addon-playlist/internal/port/driven"
	"github.com/alorle/addon-playlist/metrics"
)

// LogoResolver finds an image reference for a channel name. It walks a fixed
// priority chain: cache, media index search, caller fallback, placeholder.
// It never fails; every call yields some reference.
type LogoResolver struct {
	cache  *LogoCache
	index  driven.MediaIndex
	logger *slog.Logger

	group singleflight.Group
}

// NewLogoResolver creates a resolver. A nil index skips the search step.
func NewLogoResolver(cache *LogoCache, index driven.MediaIndex, logger *slog.Logger) *LogoResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoResolver{
		cache:  cache,
		index:  index,
		logger: logger,
	}
}

// Resolve returns the logo reference for name. Concurrent calls for the same
// cache key share one resolution.
func (r *LogoResolver) Resolve(ctx context.Context, name, fallback string) string {
	key := logo.Key(name)
	if key == "" {
		return uncached(name, fallback)
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, name, fallback), nil
	})
	return v.(string)
}

func (r *LogoResolver) resolve(ctx context.Context, name, fallback string) string {
	if e, ok := r.cache.Get(ctx, name); ok {
		metrics.RecordLogoResolution("cache")
		return e.Reference()
	}
	if ctx.Err() != nil {
		return uncached(name, fallback)
	}

	url, ok := r.searchIndex(ctx, name)
	if ctx.Err() != nil {
		// Leave the channel uncached so a later call searches again.
		r.logger.Debug("logo resolution cancelled", "name", name, "error", ctx.Err())
		return uncached(name, fallback)
	}
	if ok {
		return r.store(ctx, name, url, logo.SourceWikimedia)
	}

	if strings.TrimSpace(fallback) != "" {
		return r.store(ctx, name, fallback, logo.SourceFallbackProvided)
	}

	return r.store(ctx, name, logo.Placeholder(name), logo.SourcePlaceholder)
}

// uncached picks the reference the chain would end on without recording it.
func uncached(name, fallback string) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return logo.Placeholder(name)
}

func (r *LogoResolver) store(ctx context.Context, name, url string, source logo.Source) string {
	metrics.RecordLogoResolution(string(source))
	ref := r.cache.Put(ctx, name, url, source)
	r.logger.Debug("logo resolved", "name", name, "source", source, "ref", ref)
	return ref
}

// searchIndex tries every search term in priority order and returns the URL
// of the first candidate file that passes the filter and has image info.
// Index failures end the search for this channel without an error.
func (r *LogoResolver) searchIndex(ctx context.Context, name string) (url string, ok bool) {
	if r.index == nil {
		return "", false
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("logo search panicked", "name", name, "panic", p)
			url, ok = "", false
		}
	}()

	for _, term := range logo.SearchTerms(name) {
		if ctx.Err() != nil {
			return "", false
		}

		titles, err := r.index.Search(ctx, term)
		if errors.Is(err, logo.ErrIndexUnavailable) {
			r.logger.Debug("media index unavailable, skipping search", "name", name)
			return "", false
		}
		if err != nil {
			r.logger.Debug("logo search failed", "term", term, "error", err)
			continue
		}

		for _, title := range titles {
			if !logo.IsValidCandidate(title, term) {
				continue
			}

			u, err := r.index.ResolveFileURL(ctx, title)
			if errors.Is(err, logo.ErrIndexUnavailable) {
				r.logger.Debug("media index unavailable, skipping search", "name", name)
				return "", false
			}
			if err != nil || u == "" {
				r.logger.Debug("no image info for candidate", "file", title, "error", err)
				continue
			}

			r.logger.Debug("logo candidate accepted", "name", name, "term", term, "file", title)
			return u, true
		}
	}

	return "", false
}
