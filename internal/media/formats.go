package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Format is one rendition a source offers for download.
type Format struct {
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	Resolution string `json:"resolution"`
	FormatNote string `json:"format_note"`
	Filesize   int64  `json:"filesize"`
}

// SourceInfo lists the renditions available for a media URL.
type SourceInfo struct {
	Title   string   `json:"title"`
	Formats []Format `json:"formats"`
}

// Formats queries yt-dlp for the renditions a URL offers.
func Formats(ctx context.Context, url string) (*SourceInfo, error) {
	ytdlpPath, err := EnsureYtdlp()
	if err != nil {
		return nil, fmt.Errorf("error ensuring yt-dlp: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, ytdlpPath,
		"--no-check-certificate",
		"--no-warnings",
		"--no-playlist",
		"-J", url,
	)
	stdout, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("error listing formats: %v", err)
	}
	var info SourceInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("error parsing yt-dlp output: %v", err)
	}
	return &info, nil
}

// FindFormat returns the rendition matching formatID, if offered.
func (s *SourceInfo) FindFormat(formatID string) (Format, bool) {
	for _, format := range s.Formats {
		if format.FormatID == formatID {
			return format, true
		}
	}
	return Format{}, false
}
