package media

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// yt-dlp progress lines look like "[download]  42.3% of 10.00MiB at ...".
	downloadProgressRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+of`)
	// ffmpeg reports "time=00:01:23.45" on stderr while encoding.
	transcodeTimeRe = regexp.MustCompile(`time=(\d+:\d+:\d+(?:\.\d+)?)`)
	durationRe      = regexp.MustCompile(`Duration:\s*(\d+:\d+:\d+(?:\.\d+)?)`)
)

// parseDownloadProgress extracts the percentage from a yt-dlp output line.
// Malformed or "NA" progress lines report false and are skipped by callers.
func parseDownloadProgress(line string) (float64, bool) {
	if !strings.Contains(line, "download") {
		return 0, false
	}
	m := downloadProgressRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	progress, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return progress, true
}

// parseTranscodeProgress turns an ffmpeg stderr line into a percentage of the
// total duration. Lines without a parseable time are skipped.
func parseTranscodeProgress(line string, totalSeconds float64) (float64, bool) {
	if totalSeconds <= 0 {
		return 0, false
	}
	m := transcodeTimeRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	current, ok := parseClock(m[1])
	if !ok {
		return 0, false
	}
	return current / totalSeconds * 100, true
}

// parseDuration extracts the total duration from ffmpeg/ffprobe banner output.
func parseDuration(output string) (float64, bool) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	return parseClock(m[1])
}

// parseClock converts "HH:MM:SS.ss" to seconds.
func parseClock(clock string) (float64, bool) {
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var seconds float64
	for _, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		seconds = seconds*60 + value
	}
	return seconds, true
}
