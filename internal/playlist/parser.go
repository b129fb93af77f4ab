// Package playlist parses IPTV M3U playlists into structured entries and
// classifies them as movies or series episodes.
package playlist

import (
	"regexp"
	"strings"
)

const (
	// HeaderMarker opens a well-formed M3U playlist.
	HeaderMarker = "#EXTM3U"
	// EntryMarker opens the metadata line of a single playable item.
	EntryMarker = "#EXTINF"
)

var (
	tvgNameRe    = regexp.MustCompile(`tvg-name="([^"]+)"`)
	tvgLogoRe    = regexp.MustCompile(`tvg-logo="([^"]+)"`)
	groupTitleRe = regexp.MustCompile(`group-title="([^"]+)"`)
)

// liveMarkers are substrings of the raw EXTINF line that flag live-TV channels,
// which are never materialized. Matching is case-sensitive on purpose: lowercase
// "hd" inside a title must not get an entry dropped.
var liveMarkers = []string{
	"Canais |",
	"HD",
	"FHD",
	"SD",
	"4K",
	"CHANNELS",
	"CHANNEL",
}

// Entry is one playable item parsed from an EXTINF line and its URL line.
type Entry struct {
	Title string
	URL   string
	Logo  string
	Group string
}

// IsEntryLine reports whether line starts a playlist item.
func IsEntryLine(line string) bool {
	return strings.HasPrefix(line, EntryMarker)
}

// Excluded reports whether the raw EXTINF line carries a live-TV marker.
func Excluded(infoLine string) bool {
	for _, marker := range liveMarkers {
		if strings.Contains(infoLine, marker) {
			return true
		}
	}
	return false
}

// ParseEntry extracts the entry attributes from an EXTINF line. Attributes that
// are absent yield empty strings; a malformed line never produces an error.
func ParseEntry(infoLine, url string) Entry {
	entry := Entry{URL: url}
	if m := tvgNameRe.FindStringSubmatch(infoLine); m != nil {
		entry.Title = m[1]
	}
	if m := tvgLogoRe.FindStringSubmatch(infoLine); m != nil {
		entry.Logo = m[1]
	}
	if m := groupTitleRe.FindStringSubmatch(infoLine); m != nil {
		entry.Group = m[1]
	}
	return entry
}

// Entries walks the playlist lines and collects every non-excluded entry. Each
// EXTINF line consumes exactly the next line as its URL; a missing URL line
// yields an entry with an empty URL.
func Entries(lines []string) []Entry {
	var entries []Entry
	for i := 0; i < len(lines); i++ {
		if !IsEntryLine(lines[i]) {
			continue
		}
		if Excluded(lines[i]) {
			i++
			continue
		}
		url := ""
		if i+1 < len(lines) {
			url = lines[i+1]
		}
		entries = append(entries, ParseEntry(lines[i], url))
		i++
	}
	return entries
}

// CountEligible returns the number of entry lines that pass the exclusion
// filter, used as the progress denominator before a full walk.
func CountEligible(lines []string) int {
	count := 0
	for _, line := range lines {
		if IsEntryLine(line) && !Excluded(line) {
			count++
		}
	}
	return count
}
