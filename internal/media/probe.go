package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// ProbeTimeout bounds one ffprobe invocation.
const ProbeTimeout = 10 * time.Second

// StreamInfo describes one stream found in a probed media source.
type StreamInfo struct {
	Type     string `json:"type"`
	Codec    string `json:"codec"`
	Language string `json:"language"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	FPS      string `json:"fps,omitempty"`
}

// MediaInfo summarizes a probed media source.
type MediaInfo struct {
	Duration string       `json:"duration"`
	Size     string       `json:"size"`
	Bitrate  string       `json:"bitrate"`
	Streams  []StreamInfo `json:"streams"`
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Tags       struct {
			Language string `json:"language"`
		} `json:"tags"`
	} `json:"streams"`
}

// Probe inspects a media URL with ffprobe and returns a friendly summary. An
// unreachable or unparseable source is an error.
func Probe(ctx context.Context, url string) (*MediaInfo, error) {
	ffprobePath, err := EnsureFFprobe()
	if err != nil {
		return nil, fmt.Errorf("error ensuring ffprobe: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		url,
	)
	stdout, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("media probe timed out")
		}
		return nil, fmt.Errorf("error probing media: %v", err)
	}
	var raw ffprobeOutput
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, fmt.Errorf("error parsing ffprobe output: %v", err)
	}

	info := &MediaInfo{
		Duration: orDefault(raw.Format.Duration, "0"),
		Size:     orDefault(raw.Format.Size, "0"),
		Bitrate:  orDefault(raw.Format.BitRate, "0"),
	}
	for _, stream := range raw.Streams {
		streamInfo := StreamInfo{
			Type:     orDefault(stream.CodecType, "unknown"),
			Codec:    orDefault(stream.CodecName, "unknown"),
			Language: orDefault(stream.Tags.Language, "unknown"),
		}
		if stream.CodecType == "video" {
			streamInfo.Width = stream.Width
			streamInfo.Height = stream.Height
			streamInfo.FPS = stream.RFrameRate
		}
		info.Streams = append(info.Streams, streamInfo)
	}
	return info, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
