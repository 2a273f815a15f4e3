package driven

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alorle/addon-playlist/internal/content"
)

const (
	defaultAddonTimeout = 15 * time.Second
	streamFetchLimit    = 4
)

// Addon describes one manifest-based addon and the catalogs to pull from it.
// When Catalogs is empty, every catalog listed in the addon manifest is used.
type Addon struct {
	Name     string
	URL      string
	Catalogs []Catalog
}

// Catalog identifies an addon catalog by content type and catalog id.
type Catalog struct {
	Type string
	ID   string
}

// AddonHTTPSource fetches content items from manifest-based addons over HTTP.
// It implements the driven.ContentSource port.
type AddonHTTPSource struct {
	addons []Addon
	client *http.Client
	logger *slog.Logger
}

// NewAddonHTTPSource creates a content source for the given addons.
// If client is nil, it creates a default HTTP client with a 15-second timeout.
func NewAddonHTTPSource(addons []Addon, client *http.Client, logger *slog.Logger) (*AddonHTTPSource, error) {
	for _, a := range addons {
		if strings.TrimSpace(a.URL) == "" {
			return nil, fmt.Errorf("addon %q: %w", a.Name, content.ErrEmptyAddonURL)
		}
	}
	if client == nil {
		client = &http.Client{
			Timeout: defaultAddonTimeout,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AddonHTTPSource{
		addons: addons,
		client: client,
		logger: logger,
	}, nil
}

type manifestDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Catalogs []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"catalogs"`
}

type metaDTO struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Poster      string   `json:"poster"`
	Logo        string   `json:"logo"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	ReleaseInfo string   `json:"releaseInfo"`
	IMDBRating  string   `json:"imdbRating"`
	Runtime     string   `json:"runtime"`
	Language    string   `json:"language"`
}

type catalogDTO struct {
	Metas []metaDTO `json:"metas"`
}

type streamDTO struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

type streamsDTO struct {
	Streams []streamDTO `json:"streams"`
}

// FetchContent pulls every configured catalog of every addon, attaches the
// streams of each item and returns the items that have at least one playable
// stream. Items are de-duplicated by id across catalogs and addons; the first
// occurrence wins.
func (s *AddonHTTPSource) FetchContent(ctx context.Context) ([]content.Item, error) {
	var items []content.Item
	seen := make(map[string]struct{})

	for _, addon := range s.addons {
		fetched, err := s.fetchAddon(ctx, addon)
		if err != nil {
			return nil, fmt.Errorf("addon %s: %w", addonLabel(addon), err)
		}
		for _, it := range fetched {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			items = append(items, it)
		}
	}

	if items == nil {
		items = []content.Item{}
	}
	return items, nil
}

func (s *AddonHTTPSource) fetchAddon(ctx context.Context, addon Addon) ([]content.Item, error) {
	base := strings.TrimRight(strings.TrimSuffix(addon.URL, "/manifest.json"), "/")

	catalogs := addon.Catalogs
	if len(catalogs) == 0 {
		var m manifestDTO
		if err := s.getJSON(ctx, base+"/manifest.json", &m); err != nil {
			return nil, fmt.Errorf("fetching manifest: %w", err)
		}
		for _, c := range m.Catalogs {
			catalogs = append(catalogs, Catalog{Type: c.Type, ID: c.ID})
		}
		if len(catalogs) == 0 {
			return nil, content.ErrCatalogMissing
		}
	}

	var metas []metaDTO
	for _, c := range catalogs {
		var cat catalogDTO
		u := fmt.Sprintf("%s/catalog/%s/%s.json", base, url.PathEscape(c.Type), url.PathEscape(c.ID))
		if err := s.getJSON(ctx, u, &cat); err != nil {
			return nil, fmt.Errorf("fetching catalog %s/%s: %w", c.Type, c.ID, err)
		}
		metas = append(metas, cat.Metas...)
	}

	return s.attachStreams(ctx, base, metas)
}

// attachStreams fetches the streams of every meta concurrently. A meta whose
// streams cannot be fetched, or that has none, is dropped.
func (s *AddonHTTPSource) attachStreams(ctx context.Context, base string, metas []metaDTO) ([]content.Item, error) {
	results := make([]*content.Item, len(metas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(streamFetchLimit)

	var mu sync.Mutex
	dropped := 0

	for i, m := range metas {
		item, err := metaToItem(m)
		if err != nil {
			s.logger.Debug("skipping invalid addon item", "id", m.ID, "error", err)
			continue
		}

		g.Go(func() error {
			var sd streamsDTO
			u := fmt.Sprintf("%s/stream/%s/%s.json", base, url.PathEscape(item.Type), url.PathEscape(item.ID))
			if err := s.getJSON(gctx, u, &sd); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("failed to fetch streams, dropping item", "id", item.ID, "title", item.Title, "error", err)
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			}

			for _, st := range sd.Streams {
				item.Streams = append(item.Streams, content.Stream{URL: st.URL, Title: st.Title, Name: st.Name})
			}
			if len(item.PlayableStreams()) == 0 {
				s.logger.Debug("dropping item", "id", item.ID, "title", item.Title, "error", content.ErrNoStreams)
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			}
			results[i] = &item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]content.Item, 0, len(results))
	for _, it := range results {
		if it != nil {
			items = append(items, *it)
		}
	}
	if dropped > 0 {
		s.logger.Debug("dropped addon items without streams", "count", dropped)
	}
	return items, nil
}

func metaToItem(m metaDTO) (content.Item, error) {
	item, err := content.NewItem(m.ID, m.Name)
	if err != nil {
		return content.Item{}, err
	}
	item.Type = m.Type
	item.Year = m.ReleaseInfo
	item.Language = m.Language
	item.Description = m.Description
	item.IMDBRating = m.IMDBRating
	item.Duration = parseRuntime(m.Runtime)
	if len(m.Genres) > 0 {
		item.Genre = m.Genres[0]
	}
	item.Poster = m.Logo
	if item.Poster == "" {
		item.Poster = m.Poster
	}
	return item, nil
}

// parseRuntime converts addon runtimes such as "42 min" or "90" to seconds.
// Unknown formats yield 0.
func parseRuntime(runtime string) int {
	fields := strings.Fields(runtime)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes * 60
}

func (s *AddonHTTPSource) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func addonLabel(a Addon) string {
	if a.Name != "" {
		return a.Name
	}
	return a.URL
}
