package media

import "strconv"

// DownloadOptions configures one yt-dlp invocation.
type DownloadOptions struct {
	URL        string
	OutputPath string
	// FormatID selects a specific rendition offered by the source; empty
	// falls back to "best".
	FormatID string
	// ExtraArgs are appended verbatim to the yt-dlp command line.
	ExtraArgs []string
}

// TranscodeOptions configures one ffmpeg conversion. Zero values fall back to
// the documented defaults below.
type TranscodeOptions struct {
	Scale        string // default 1920:1080
	VideoCodec   string // default libx264
	Preset       string // default fast
	CRF          int    // default 23
	AudioCodec   string // default aac
	AudioBitrate string // default 192k
	FastStart    bool
	// ExtraArgs are appended before the output path.
	ExtraArgs []string
}

// DefaultTranscodeOptions is the standard 1080p H.264/AAC conversion chain.
func DefaultTranscodeOptions() TranscodeOptions {
	return TranscodeOptions{
		Scale:        "1920:1080",
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          23,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		FastStart:    true,
	}
}

func (o TranscodeOptions) withDefaults() TranscodeOptions {
	def := DefaultTranscodeOptions()
	if o.Scale == "" {
		o.Scale = def.Scale
	}
	if o.VideoCodec == "" {
		o.VideoCodec = def.VideoCodec
	}
	if o.Preset == "" {
		o.Preset = def.Preset
	}
	if o.CRF == 0 {
		o.CRF = def.CRF
	}
	if o.AudioCodec == "" {
		o.AudioCodec = def.AudioCodec
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = def.AudioBitrate
	}
	return o
}

func (o TranscodeOptions) args(inputPath, outputPath string) []string {
	o = o.withDefaults()
	args := []string{
		"-i", inputPath,
		"-vf", "scale=" + o.Scale,
		"-c:v", o.VideoCodec,
		"-preset", o.Preset,
		"-crf", strconv.Itoa(o.CRF),
		"-c:a", o.AudioCodec,
		"-b:a", o.AudioBitrate,
	}
	if o.FastStart {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, o.ExtraArgs...)
	args = append(args, "-y", outputPath)
	return args
}
