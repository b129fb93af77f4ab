package playlist

import (
	"regexp"
	"strings"
)

// seriesRe captures "<name> S<season>E<episode>" anywhere in a title. This is a
// heuristic: a title with an unrelated "S..E.." substring will false-positive.
// Known limitation, kept as-is.
var seriesRe = regexp.MustCompile(`(.*?)\s*S(\d+)E(\d+)`)

// Classified is an Entry augmented with the movie/series decision. When
// IsSeries is true, SeriesName, Season and Episode are all non-empty.
type Classified struct {
	Entry
	IsSeries   bool
	SeriesName string
	Season     string
	Episode    string
}

// Classify decides series vs. movie from the entry title. Series detection
// requires both a literal "S" and "E" in the title plus a SxxExx pattern match;
// anything else is a movie.
func Classify(entry Entry) Classified {
	item := Classified{Entry: entry}
	if !strings.Contains(entry.Title, "S") || !strings.Contains(entry.Title, "E") {
		return item
	}
	m := seriesRe.FindStringSubmatch(entry.Title)
	if m == nil {
		return item
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		// A bare "SxxExx" title gives no series to file it under.
		return item
	}
	item.IsSeries = true
	item.SeriesName = name
	item.Season = m[2]
	item.Episode = m[3]
	return item
}
