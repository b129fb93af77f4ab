package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if *cfg != def {
		t.Errorf("cfg = %+v\nwant defaults %+v", *cfg, def)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.M3UURL = "http://provider/playlist.m3u"
	cfg.ProcessSeries = false
	cfg.Port = 9000
	cfg.TMDBAPIKey = "abc123"
	if err := Save(path, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != cfg {
		t.Errorf("loaded = %+v\nwant %+v", *loaded, cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9100\nm3u_url: http://x/list.m3u\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 || cfg.M3UURL != "http://x/list.m3u" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.QueueFile != "queue.json" || cfg.RetentionDays != 7 || !cfg.ProcessMovies {
		t.Errorf("unset keys must keep defaults: %+v", cfg)
	}
}

func TestLoadMalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.MoviesDir = filepath.Join(root, "movies")
	cfg.SeriesDir = filepath.Join(root, "series")
	cfg.UploadDir = filepath.Join(root, "uploads")
	cfg.ProcessedDir = filepath.Join(root, "processed")
	cfg.HostDir = ""
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{cfg.MoviesDir, cfg.SeriesDir, cfg.UploadDir, cfg.ProcessedDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
}
