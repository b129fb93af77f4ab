package strm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Advansoftware/m3utostrm/internal/playlist"
)

func TestWriteEpisode(t *testing.T) {
	root := t.TempDir()
	item := playlist.Classify(playlist.ParseEntry(
		`#EXTINF:-1 tvg-name="Show S01E02",Show S01E02`, "http://x/ep2"))
	path, err := Write(item, root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := filepath.Join(root, "Show", "Season 01", "S01E02.strm")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading pointer file: %v", err)
	}
	if string(content) != "http://x/ep2" {
		t.Errorf("content = %q, want the raw URL", content)
	}
}

func TestWriteEpisodePadsSeasonAndEpisode(t *testing.T) {
	root := t.TempDir()
	item := playlist.Classified{
		Entry:      playlist.Entry{Title: "Show S1E2", URL: "http://x/e"},
		IsSeries:   true,
		SeriesName: "Show",
		Season:     "1",
		Episode:    "2",
	}
	path, err := Write(item, root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := filepath.Join(root, "Show", "Season 01", "S01E02.strm")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestWriteMovieSanitizesTitle(t *testing.T) {
	root := t.TempDir()
	item := playlist.Classified{Entry: playlist.Entry{Title: "My Movie!", URL: "http://x/m"}}
	path, err := Write(item, root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := filepath.Join(root, "My Movie.strm")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "http://x/m" {
		t.Errorf("content = %q", content)
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	root := t.TempDir()
	item := playlist.Classified{Entry: playlist.Entry{Title: "Movie", URL: "http://x/old"}}
	if _, err := Write(item, root); err != nil {
		t.Fatalf("first write: %v", err)
	}
	item.URL = "http://x/new"
	path, err := Write(item, root)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "http://x/new" {
		t.Errorf("second write must overwrite, got %q", content)
	}
	files, _ := os.ReadDir(root)
	if len(files) != 1 {
		t.Errorf("expected a single file, found %d", len(files))
	}
}

func TestDeleteMissingFileIsSuccess(t *testing.T) {
	if err := Delete(filepath.Join(t.TempDir(), "nope.strm")); err != nil {
		t.Errorf("deleting a missing pointer file should succeed, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	root := t.TempDir()
	item := playlist.Classified{Entry: playlist.Entry{Title: "Movie", URL: "http://x/m"}}
	path, err := Write(item, root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pointer file still present after delete")
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"My Movie!", "My Movie"},
		{"A/B\\C:D", "ABCD"},
		{"keep-this_one 2", "keep-this_one 2"},
		{"Ação", "Ação"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
