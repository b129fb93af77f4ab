package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	M3UURL        string `yaml:"m3u_url" json:"m3u_url"`
	M3UFile       string `yaml:"m3u_file" json:"m3u_file"`
	UseFile       bool   `yaml:"use_file" json:"use_file"`
	MoviesDir     string `yaml:"movies_dir" json:"movies_dir"`
	SeriesDir     string `yaml:"series_dir" json:"series_dir"`
	ProcessMovies bool   `yaml:"process_movies" json:"process_movies"`
	ProcessSeries bool   `yaml:"process_series" json:"process_series"`
	TMDBAPIKey    string `yaml:"tmdb_api_key" json:"tmdb_api_key"`
	OMDBAPIKey    string `yaml:"omdb_api_key" json:"omdb_api_key"`

	Port          int    `yaml:"port" json:"port"`
	QueueFile     string `yaml:"queue_file" json:"queue_file"`
	UploadDir     string `yaml:"upload_dir" json:"upload_dir"`
	ProcessedDir  string `yaml:"processed_dir" json:"processed_dir"`
	HostDir       string `yaml:"host_dir" json:"host_dir"`
	RetentionDays int    `yaml:"retention_days" json:"retention_days"`
}

func Default() Config {
	return Config{
		MoviesDir:     "iptv/movies",
		SeriesDir:     "iptv/series",
		ProcessMovies: true,
		ProcessSeries: true,
		Port:          8001,
		QueueFile:     "queue.json",
		UploadDir:     "uploads",
		ProcessedDir:  "processed",
		HostDir:       "host_videos",
		RetentionDays: 7,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist yet.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %v", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}
	return nil
}

// EnsureDirs creates every working directory the services depend on.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.MoviesDir, c.SeriesDir, c.UploadDir, c.ProcessedDir, c.HostDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %v", dir, err)
		}
	}
	return nil
}
