package strm

import (
	"os"
	"path/filepath"
	"strings"
)

// LibraryItem is one pointer file found in the materialized library.
type LibraryItem struct {
	Title string `json:"title"`
	File  string `json:"file"`
	URL   string `json:"url"`
}

// Library is the materialized content under the movies and series roots.
// Series maps series name to season directory name to episodes.
type Library struct {
	Movies []LibraryItem                       `json:"movies"`
	Series map[string]map[string][]LibraryItem `json:"series"`
}

// LibraryStats counts the materialized pointer files.
type LibraryStats struct {
	Movies     int `json:"movies"`
	Series     int `json:"series"`
	Episodes   int `json:"episodes"`
	TotalFiles int `json:"total_files"`
}

// ScanLibrary collects every pointer file under the two roots, following the
// layout Write produces. A root that does not exist yields an empty section,
// not an error; unreadable files are skipped.
func ScanLibrary(moviesRoot, seriesRoot string) Library {
	lib := Library{
		Movies: scanDir(moviesRoot),
		Series: map[string]map[string][]LibraryItem{},
	}
	seriesEntries, err := os.ReadDir(seriesRoot)
	if err != nil {
		return lib
	}
	for _, series := range seriesEntries {
		if !series.IsDir() {
			continue
		}
		seasons := map[string][]LibraryItem{}
		seasonEntries, err := os.ReadDir(filepath.Join(seriesRoot, series.Name()))
		if err != nil {
			continue
		}
		for _, season := range seasonEntries {
			if !season.IsDir() {
				continue
			}
			episodes := scanDir(filepath.Join(seriesRoot, series.Name(), season.Name()))
			if len(episodes) > 0 {
				seasons[season.Name()] = episodes
			}
		}
		lib.Series[series.Name()] = seasons
	}
	return lib
}

func scanDir(dir string) []LibraryItem {
	items := []LibraryItem{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return items
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		items = append(items, LibraryItem{
			Title: strings.TrimSuffix(name, Extension),
			File:  name,
			URL:   strings.TrimSpace(string(data)),
		})
	}
	return items
}

// Filter keeps movies whose title and series whose name contain search,
// case-insensitively. An empty search returns the library unchanged.
func (l Library) Filter(search string) Library {
	if search == "" {
		return l
	}
	search = strings.ToLower(search)
	filtered := Library{
		Movies: []LibraryItem{},
		Series: map[string]map[string][]LibraryItem{},
	}
	for _, movie := range l.Movies {
		if strings.Contains(strings.ToLower(movie.Title), search) {
			filtered.Movies = append(filtered.Movies, movie)
		}
	}
	for name, seasons := range l.Series {
		if strings.Contains(strings.ToLower(name), search) {
			filtered.Series[name] = seasons
		}
	}
	return filtered
}

// Stats tallies the scanned library.
func (l Library) Stats() LibraryStats {
	stats := LibraryStats{
		Movies: len(l.Movies),
		Series: len(l.Series),
	}
	for _, seasons := range l.Series {
		for _, episodes := range seasons {
			stats.Episodes += len(episodes)
		}
	}
	stats.TotalFiles = stats.Movies + stats.Episodes
	return stats
}
