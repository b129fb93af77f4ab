package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Advansoftware/m3utostrm/internal/playlist"
)

func writePlaylist(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playlist.m3u")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseOptions(t *testing.T, source string) Options {
	t.Helper()
	return Options{
		Source:        source,
		UseFile:       true,
		MoviesDir:     filepath.Join(t.TempDir(), "movies"),
		SeriesDir:     filepath.Join(t.TempDir(), "series"),
		ProcessMovies: true,
		ProcessSeries: true,
	}
}

func TestRunMaterializesSeriesEpisode(t *testing.T) {
	source := writePlaylist(t, "#EXTM3U\n#EXTINF:-1 tvg-name=\"Show S01E02\",Show S01E02\nhttp://x/ep2\n")
	opts := baseOptions(t, source)
	if err := New().Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	path := filepath.Join(opts.SeriesDir, "Show", "Season 01", "S01E02.strm")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected episode pointer file: %v", err)
	}
	if string(content) != "http://x/ep2" {
		t.Errorf("content = %q", content)
	}
}

func TestRunMaterializesMovie(t *testing.T) {
	source := writePlaylist(t, "#EXTM3U\n#EXTINF:-1 tvg-name=\"My Movie!\",My Movie!\nhttp://x/m\n")
	opts := baseOptions(t, source)
	if err := New().Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(opts.MoviesDir, "My Movie.strm"))
	if err != nil {
		t.Fatalf("expected movie pointer file: %v", err)
	}
	if string(content) != "http://x/m" {
		t.Errorf("content = %q", content)
	}
}

func TestRunSkipsLiveChannels(t *testing.T) {
	source := writePlaylist(t, "#EXTM3U\n"+
		"#EXTINF:-1 tvg-name=\"Channel\" group-title=\"Canais |\",Channel\nhttp://x/live\n"+
		"#EXTINF:-1 tvg-name=\"Movie\",Movie\nhttp://x/m\n")
	opts := baseOptions(t, source)
	var totals []int
	processed := 0
	opts.Progress = func(item playlist.Classified, done, total int) {
		totals = append(totals, total)
		processed++
	}
	if err := New().Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1 (live channel not counted)", processed)
	}
	for _, total := range totals {
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	}
	files, _ := os.ReadDir(opts.MoviesDir)
	if len(files) != 1 {
		t.Errorf("expected a single movie file, found %d", len(files))
	}
}

func TestRunDisabledTypeStillCounts(t *testing.T) {
	source := writePlaylist(t, "#EXTM3U\n#EXTINF:-1 tvg-name=\"Movie\",Movie\nhttp://x/m\n")
	opts := baseOptions(t, source)
	opts.ProcessMovies = false
	processed := 0
	opts.Progress = func(item playlist.Classified, done, total int) { processed++ }
	if err := New().Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if _, err := os.Stat(filepath.Join(opts.MoviesDir, "Movie.strm")); !os.IsNotExist(err) {
		t.Error("no file should be written when movies are disabled")
	}
}

func TestRunCancellationStopsBetweenEntries(t *testing.T) {
	source := writePlaylist(t, "#EXTM3U\n"+
		"#EXTINF:-1 tvg-name=\"Movie One\",Movie One\nhttp://x/1\n"+
		"#EXTINF:-1 tvg-name=\"Movie Two\",Movie Two\nhttp://x/2\n"+
		"#EXTINF:-1 tvg-name=\"Movie Three\",Movie Three\nhttp://x/3\n")
	opts := baseOptions(t, source)
	orchestrator := New()
	opts.Progress = func(item playlist.Classified, done, total int) {
		if done == 0 {
			orchestrator.Cancel()
		}
	}
	if err := orchestrator.Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	files, _ := os.ReadDir(opts.MoviesDir)
	if len(files) != 1 {
		t.Errorf("expected the in-flight entry to finish and the rest to stop, found %d files", len(files))
	}
}

func TestRunSourceFailureHasNoSideEffects(t *testing.T) {
	opts := baseOptions(t, filepath.Join(t.TempDir(), "missing.m3u"))
	if err := New().Run(opts); err == nil {
		t.Fatal("expected an error for a missing source")
	}
	if _, err := os.Stat(opts.MoviesDir); !os.IsNotExist(err) {
		t.Error("no directories should be created when the source fails")
	}
}
