// Package strm materializes classified playlist items as pointer files: small
// .strm text files whose entire content is the stream URL, laid out the way
// media library clients expect (flat for movies, Series/Season NN for shows).
package strm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Advansoftware/m3utostrm/internal/playlist"
)

// Extension carried by every pointer file.
const Extension = ".strm"

// Write materializes item under the matching root. Writing over an existing
// pointer file overwrites it; the operation is idempotent.
func Write(item playlist.Classified, root string) (string, error) {
	if item.IsSeries {
		return writeEpisode(item, root)
	}
	return writeMovie(item, root)
}

func writeMovie(item playlist.Classified, root string) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("error creating movies directory: %v", err)
	}
	path := filepath.Join(root, SanitizeTitle(item.Title)+Extension)
	if err := os.WriteFile(path, []byte(item.URL), 0644); err != nil {
		return "", fmt.Errorf("error writing pointer file: %v", err)
	}
	return path, nil
}

func writeEpisode(item playlist.Classified, root string) (string, error) {
	season := pad2(item.Season)
	episode := pad2(item.Episode)
	seasonDir := filepath.Join(root, item.SeriesName, "Season "+season)
	if err := os.MkdirAll(seasonDir, 0755); err != nil {
		return "", fmt.Errorf("error creating season directory: %v", err)
	}
	path := filepath.Join(seasonDir, fmt.Sprintf("S%sE%s%s", season, episode, Extension))
	if err := os.WriteFile(path, []byte(item.URL), 0644); err != nil {
		return "", fmt.Errorf("error writing pointer file: %v", err)
	}
	return path, nil
}

// Delete removes a pointer file. A path that does not exist is a success.
func Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing pointer file: %v", err)
	}
	return nil
}

// SanitizeTitle drops every character that is not alphanumeric, space, hyphen
// or underscore. Characters are removed, not replaced.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == ' ' || r == '-' || r == '_':
			return r
		default:
			return -1
		}
	}, title)
}

func pad2(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}
