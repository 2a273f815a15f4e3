package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alorle/addon-playlist/internal/logo"
)

// mockMediaIndex is a mock implementation of driven.MediaIndex for testing.
type mockMediaIndex struct {
	searchFunc  func(ctx context.Context, term string) ([]string, error)
	resolveFunc func(ctx context.Context, fileTitle string) (string, error)

	searches atomic.Int32
	resolves atomic.Int32
}

func (m *mockMediaIndex) Search(ctx context.Context, term string) ([]string, error) {
	m.searches.Add(1)
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term)
	}
	return nil, nil
}

func (m *mockMediaIndex) ResolveFileURL(ctx context.Context, fileTitle string) (string, error) {
	m.resolves.Add(1)
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, fileTitle)
	}
	return "", logo.ErrNoImageInfo
}

func (m *mockMediaIndex) calls() int {
	return int(m.searches.Load() + m.resolves.Load())
}

func newTestResolver(t *testing.T, index *mockMediaIndex) (*LogoResolver, *LogoCache, *mockLogoMetadataRepository) {
	t.Helper()
	repo := newMockLogoMetadataRepository()
	cache := newTestLogoCache(t, repo, &mockImageDownloader{})
	if index == nil {
		return NewLogoResolver(cache, nil, nil), cache, repo
	}
	return NewLogoResolver(cache, index, nil), cache, repo
}

func TestLogoResolver_IndexHit(t *testing.T) {
	var searched []string
	var mu sync.Mutex
	index := &mockMediaIndex{
		searchFunc: func(ctx context.Context, term string) ([]string, error) {
			mu.Lock()
			searched = append(searched, term)
			mu.Unlock()
			if term == "ESPN logo" {
				return []string{
					"File:ESPN_Stadium_Screenshot_2019.jpg",
					"File:ESPN_wordmark_2010.png",
					"File:ESPN_logo.svg",
				}, nil
			}
			return nil, nil
		},
		resolveFunc: func(ctx context.Context, fileTitle string) (string, error) {
			if fileTitle != "File:ESPN_logo.svg" {
				t.Errorf("unexpected candidate resolved: %s", fileTitle)
			}
			return "https://upload.example.org/thumb/200px-ESPN_logo.svg.png", nil
		},
	}
	r, cache, repo := newTestResolver(t, index)
	ctx := context.Background()

	ref := r.Resolve(ctx, "ESPN", "https://addon.example.com/espn.jpg")

	e, ok := repo.stored("espn")
	if !ok {
		t.Fatal("expected resolution to be cached")
	}
	if e.Source != logo.SourceWikimedia {
		t.Errorf("expected wikimedia source, got %q", e.Source)
	}
	if ref != e.LocalPath || ref == "" {
		t.Errorf("expected local path %q, got %q", e.LocalPath, ref)
	}
	if len(searched) != 2 || searched[0] != "ESPN" || searched[1] != "ESPN logo" {
		t.Errorf("expected search to stop at the winning term, searched %v", searched)
	}

	t.Run("second call is a pure cache hit", func(t *testing.T) {
		before := index.calls()
		again := r.Resolve(ctx, "ESPN", "https://addon.example.com/espn.jpg")
		if again != ref {
			t.Errorf("expected %q, got %q", ref, again)
		}
		if index.calls() != before {
			t.Errorf("expected no index calls, got %d", index.calls()-before)
		}
		if e2, _ := cache.Get(ctx, "ESPN"); e2.Timestamp != e.Timestamp {
			t.Error("expected cache hit not to rewrite the entry")
		}
	})
}

func TestLogoResolver_FallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the caller fallback when the index finds nothing", func(t *testing.T) {
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				return []string{"File:Random_photo.jpg"}, nil
			},
		}
		r, _, repo := newTestResolver(t, index)

		ref := r.Resolve(ctx, "Obscure TV", "/srv/obscure.png")
		if ref != "/srv/obscure.png" {
			t.Errorf("expected fallback, got %q", ref)
		}
		if e, _ := repo.stored("obscure tv"); e.Source != logo.SourceFallbackProvided {
			t.Errorf("expected fallbackProvided, got %q", e.Source)
		}
		if index.resolves.Load() != 0 {
			t.Errorf("expected no file lookups for rejected candidates")
		}
		if int(index.searches.Load()) != len(logo.SearchTerms("Obscure TV")) {
			t.Errorf("expected every term to be searched, got %d", index.searches.Load())
		}
	})

	t.Run("placeholder when nothing else is available", func(t *testing.T) {
		r, _, repo := newTestResolver(t, &mockMediaIndex{})

		ref := r.Resolve(ctx, "Local 7", "  ")
		if ref != logo.Placeholder("Local 7") {
			t.Errorf("expected placeholder, got %q", ref)
		}
		if e, _ := repo.stored("local 7"); e.Source != logo.SourcePlaceholder {
			t.Errorf("expected placeholder source, got %q", e.Source)
		}
	})

	t.Run("transient search errors move on to the next term", func(t *testing.T) {
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				if term == "NBC" {
					return nil, errors.New("timeout")
				}
				return []string{"File:NBC_logo.svg"}, nil
			},
			resolveFunc: func(ctx context.Context, fileTitle string) (string, error) {
				return "https://upload.example.org/NBC_logo.svg", nil
			},
		}
		r, _, repo := newTestResolver(t, index)

		r.Resolve(ctx, "NBC", "")
		if e, _ := repo.stored("nbc"); e.Source != logo.SourceWikimedia {
			t.Errorf("expected wikimedia source, got %q", e.Source)
		}
	})

	t.Run("unavailable index stops searching", func(t *testing.T) {
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				return nil, logo.ErrIndexUnavailable
			},
		}
		r, _, _ := newTestResolver(t, index)

		ref := r.Resolve(ctx, "CBS", "https://addon.example.com/cbs.png")
		if index.searches.Load() != 1 {
			t.Errorf("expected a single search attempt, got %d", index.searches.Load())
		}
		if ref == "" {
			t.Error("expected a reference")
		}
	})

	t.Run("missing image info tries the next candidate", func(t *testing.T) {
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				return []string{"File:PBS_logo.svg", "File:PBS_logo_current.png"}, nil
			},
			resolveFunc: func(ctx context.Context, fileTitle string) (string, error) {
				if fileTitle == "File:PBS_logo.svg" {
					return "", logo.ErrNoImageInfo
				}
				return "https://upload.example.org/PBS_logo_current.png", nil
			},
		}
		r, _, repo := newTestResolver(t, index)

		r.Resolve(ctx, "PBS", "")
		e, _ := repo.stored("pbs")
		if e.URL != "https://upload.example.org/PBS_logo_current.png" {
			t.Errorf("expected second candidate, got %q", e.URL)
		}
	})

	t.Run("a panicking index degrades to the fallback", func(t *testing.T) {
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				panic("unexpected")
			},
		}
		r, _, _ := newTestResolver(t, index)

		if ref := r.Resolve(ctx, "AMC", "/srv/amc.png"); ref != "/srv/amc.png" {
			t.Errorf("expected fallback, got %q", ref)
		}
	})

	t.Run("no index configured", func(t *testing.T) {
		r, _, _ := newTestResolver(t, nil)
		if ref := r.Resolve(ctx, "Syfy", "/srv/syfy.png"); ref != "/srv/syfy.png" {
			t.Errorf("expected fallback, got %q", ref)
		}
	})

	t.Run("blank name returns the fallback untouched", func(t *testing.T) {
		r, _, repo := newTestResolver(t, &mockMediaIndex{})
		if ref := r.Resolve(ctx, "  ", "/srv/x.png"); ref != "/srv/x.png" {
			t.Errorf("expected fallback, got %q", ref)
		}
		entries, _ := repo.FindAll(ctx)
		if len(entries) != 0 {
			t.Errorf("expected nothing cached, got %d", len(entries))
		}
	})
}

func TestLogoResolver_CancelledResolveIsNotCached(t *testing.T) {
	index := &mockMediaIndex{
		searchFunc: func(ctx context.Context, term string) ([]string, error) {
			return []string{"File:ESPN_logo.svg"}, nil
		},
		resolveFunc: func(ctx context.Context, fileTitle string) (string, error) {
			return "https://upload.example.org/ESPN_logo.svg", nil
		},
	}
	r, _, repo := newTestResolver(t, index)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ref := r.Resolve(ctx, "ESPN", ""); ref != logo.Placeholder("ESPN") {
		t.Errorf("expected placeholder for the cancelled call, got %q", ref)
	}
	if index.calls() != 0 {
		t.Errorf("expected no index calls for the cancelled call, got %d", index.calls())
	}
	if _, ok := repo.stored("espn"); ok {
		t.Fatal("expected the cancelled call to leave nothing cached")
	}

	t.Run("a later live call searches the index", func(t *testing.T) {
		r.Resolve(context.Background(), "ESPN", "")
		if index.searches.Load() == 0 {
			t.Fatal("expected the index to be searched")
		}
		e, ok := repo.stored("espn")
		if !ok || e.Source != logo.SourceWikimedia {
			t.Errorf("expected a wikimedia entry, got %+v (ok=%v)", e, ok)
		}
	})

	t.Run("cancellation during the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		index := &mockMediaIndex{
			searchFunc: func(ctx context.Context, term string) ([]string, error) {
				cancel()
				return nil, ctx.Err()
			},
		}
		r, _, repo := newTestResolver(t, index)

		if ref := r.Resolve(ctx, "NBC", "/srv/nbc.png"); ref != "/srv/nbc.png" {
			t.Errorf("expected fallback, got %q", ref)
		}
		if _, ok := repo.stored("nbc"); ok {
			t.Error("expected nothing cached")
		}
	})
}

func TestLogoResolver_ConcurrentSameKey(t *testing.T) {
	release := make(chan struct{})
	index := &mockMediaIndex{
		searchFunc: func(ctx context.Context, term string) ([]string, error) {
			<-release
			return []string{"File:HBO_logo.svg"}, nil
		},
		resolveFunc: func(ctx context.Context, fileTitle string) (string, error) {
			return "https://upload.example.org/HBO_logo.svg", nil
		},
	}
	r, _, _ := newTestResolver(t, index)

	const callers = 5
	refs := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i] = r.Resolve(context.Background(), "HBO", "")
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if index.searches.Load() != 1 {
		t.Errorf("expected one shared resolution, got %d searches", index.searches.Load())
	}
	for i := 1; i < callers; i++ {
		if refs[i] != refs[0] {
			t.Errorf("caller %d got %q, expected %q", i, refs[i], refs[0])
		}
	}
}
