package driver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alorle/addon-playlist/internal/content"
)

func TestPlaylistHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /playlist.m3u returns 503 before the first generation", func(t *testing.T) {
		handler := NewPlaylistHTTPHandler(newTestPlaylistService(t, &mockContentSource{}))

		req := httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	})

	t.Run("GET /playlist.m3u serves the generated file", func(t *testing.T) {
		service := newTestPlaylistService(t, &mockContentSource{
			fetchFunc: func(ctx context.Context) ([]content.Item, error) {
				return sampleItems(), nil
			},
		})
		if err := service.Generate(context.Background()); err != nil {
			t.Fatalf("failed to generate playlist: %v", err)
		}
		handler := NewPlaylistHTTPHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "audio/x-mpegurl" {
			t.Errorf("expected audio/x-mpegurl, got %q", got)
		}
		body := rec.Body.String()
		if !strings.HasPrefix(body, "#EXTM3U") {
			t.Errorf("expected M3U body, got %q", body)
		}
		if !strings.Contains(body, `tvg-logo="https://addon.example.com/cnn.png"`) {
			t.Errorf("expected addon logo in playlist, got %q", body)
		}
	})

	t.Run("POST /playlist.m3u returns 405", func(t *testing.T) {
		handler := NewPlaylistHTTPHandler(newTestPlaylistService(t, &mockContentSource{}))

		req := httptest.NewRequest(http.MethodPost, "/playlist.m3u", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})
}
