package driven

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alorle/addon-playlist/internal/content"
)

func testItems() []content.Item {
	return []content.Item{
		{
			ID:     "cnn",
			Title:  "CNN",
			Genre:  "News",
			Poster: "/var/cache/logos/cnn.svg",
			Streams: []content.Stream{
				{URL: "http://s/cnn-hd", Title: "HD"},
				{URL: "http://s/cnn-sd", Title: "CNN"},
				{Title: "no url"},
			},
		},
		{
			ID:      "espn",
			Title:   "ESPN",
			Poster:  "https://img.example.com/espn.png",
			Streams: []content.Stream{{URL: "http://s/espn"}},
		},
	}
}

func TestPlaylistFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "playlist.m3u")

	w, err := NewPlaylistFileWriter(path, "http://tv.local:8080/", nil)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	if w.Path() != path {
		t.Errorf("expected path %q, got %q", path, w.Path())
	}

	if err := w.Write(context.Background(), testItems()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected playlist file: %v", err)
	}
	got := string(data)

	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-id=\"cnn\" tvg-name=\"CNN\" tvg-logo=\"http://tv.local:8080/logos/cnn.svg\" group-title=\"News\",CNN - HD\n" +
		"http://s/cnn-hd\n" +
		"#EXTINF:-1 tvg-id=\"cnn\" tvg-name=\"CNN\" tvg-logo=\"http://tv.local:8080/logos/cnn.svg\" group-title=\"News\",CNN\n" +
		"http://s/cnn-sd\n" +
		"#EXTINF:-1 tvg-id=\"espn\" tvg-name=\"ESPN\" tvg-logo=\"https://img.example.com/espn.png\",ESPN\n" +
		"http://s/espn\n"
	if got != want {
		t.Errorf("unexpected playlist:\n got: %q\nwant: %q", got, want)
	}
}

func TestPlaylistFileWriter_LocalPathsWithoutBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.m3u")
	w, err := NewPlaylistFileWriter(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Write(context.Background(), testItems()); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `tvg-logo="/var/cache/logos/cnn.svg"`) {
		t.Errorf("expected local path to be written as-is, got %q", data)
	}
}

func TestPlaylistFileWriter_ReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.m3u")
	w, err := NewPlaylistFileWriter(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := w.Write(ctx, testItems()); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(ctx, testItems()[1:]); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "cnn") {
		t.Errorf("expected previous content to be replaced, got %q", data)
	}
}

func TestNewPlaylistFileWriter_EmptyPath(t *testing.T) {
	if _, err := NewPlaylistFileWriter("", "", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
