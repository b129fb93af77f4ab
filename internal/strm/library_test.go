package strm

import (
	"path/filepath"
	"testing"

	"github.com/Advansoftware/m3utostrm/internal/playlist"
)

func buildLibrary(t *testing.T) (string, string) {
	t.Helper()
	moviesRoot := t.TempDir()
	seriesRoot := t.TempDir()
	movies := []playlist.Classified{
		{Entry: playlist.Entry{Title: "First Movie", URL: "http://x/m1"}},
		{Entry: playlist.Entry{Title: "Second Movie", URL: "http://x/m2"}},
	}
	for _, item := range movies {
		if _, err := Write(item, moviesRoot); err != nil {
			t.Fatal(err)
		}
	}
	episodes := []playlist.Classified{
		{Entry: playlist.Entry{URL: "http://x/s1e1"}, IsSeries: true, SeriesName: "Show", Season: "1", Episode: "1"},
		{Entry: playlist.Entry{URL: "http://x/s1e2"}, IsSeries: true, SeriesName: "Show", Season: "1", Episode: "2"},
		{Entry: playlist.Entry{URL: "http://x/s2e1"}, IsSeries: true, SeriesName: "Show", Season: "2", Episode: "1"},
		{Entry: playlist.Entry{URL: "http://x/o1"}, IsSeries: true, SeriesName: "Other", Season: "1", Episode: "1"},
	}
	for _, item := range episodes {
		if _, err := Write(item, seriesRoot); err != nil {
			t.Fatal(err)
		}
	}
	return moviesRoot, seriesRoot
}

func TestScanLibrary(t *testing.T) {
	moviesRoot, seriesRoot := buildLibrary(t)
	lib := ScanLibrary(moviesRoot, seriesRoot)

	if len(lib.Movies) != 2 {
		t.Fatalf("movies = %d, want 2", len(lib.Movies))
	}
	byTitle := map[string]LibraryItem{}
	for _, movie := range lib.Movies {
		byTitle[movie.Title] = movie
	}
	first, ok := byTitle["First Movie"]
	if !ok || first.File != "First Movie.strm" || first.URL != "http://x/m1" {
		t.Errorf("first movie = %+v", first)
	}

	show, ok := lib.Series["Show"]
	if !ok {
		t.Fatal("series Show missing")
	}
	if len(show["Season 01"]) != 2 || len(show["Season 02"]) != 1 {
		t.Errorf("seasons = %+v", show)
	}
	episode := show["Season 01"][0]
	if episode.Title != "S01E01" || episode.URL != "http://x/s1e1" {
		t.Errorf("episode = %+v", episode)
	}
	if len(lib.Series["Other"]["Season 01"]) != 1 {
		t.Errorf("series Other = %+v", lib.Series["Other"])
	}
}

func TestScanLibraryMissingRoots(t *testing.T) {
	lib := ScanLibrary(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nada"))
	if len(lib.Movies) != 0 || len(lib.Series) != 0 {
		t.Errorf("missing roots must yield an empty library, got %+v", lib)
	}
	if lib.Movies == nil || lib.Series == nil {
		t.Error("sections must be empty, not nil")
	}
}

func TestLibraryFilter(t *testing.T) {
	moviesRoot, seriesRoot := buildLibrary(t)
	lib := ScanLibrary(moviesRoot, seriesRoot)

	filtered := lib.Filter("first")
	if len(filtered.Movies) != 1 || filtered.Movies[0].Title != "First Movie" {
		t.Errorf("movies = %+v", filtered.Movies)
	}
	if len(filtered.Series) != 0 {
		t.Errorf("series = %+v", filtered.Series)
	}

	filtered = lib.Filter("show")
	if len(filtered.Movies) != 0 || len(filtered.Series) != 1 {
		t.Errorf("filtered = %+v", filtered)
	}

	if unchanged := lib.Filter(""); len(unchanged.Movies) != 2 || len(unchanged.Series) != 2 {
		t.Errorf("empty search must return everything, got %+v", unchanged)
	}
}

func TestLibraryStats(t *testing.T) {
	moviesRoot, seriesRoot := buildLibrary(t)
	stats := ScanLibrary(moviesRoot, seriesRoot).Stats()
	want := LibraryStats{Movies: 2, Series: 2, Episodes: 4, TotalFiles: 6}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
