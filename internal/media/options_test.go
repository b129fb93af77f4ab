package media

import (
	"slices"
	"testing"
)

func TestTranscodeArgsDefaults(t *testing.T) {
	args := DefaultTranscodeOptions().args("in.mkv", "out.mp4")
	want := []string{
		"-i", "in.mkv",
		"-vf", "scale=1920:1080",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-y", "out.mp4",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v\nwant %v", args, want)
	}
}

func TestTranscodeArgsZeroValueGetsDefaults(t *testing.T) {
	args := TranscodeOptions{}.args("in.mkv", "out.mp4")
	for _, required := range []string{"scale=1920:1080", "libx264", "fast", "23", "aac", "192k"} {
		if !slices.Contains(args, required) {
			t.Errorf("args missing %q: %v", required, args)
		}
	}
	if slices.Contains(args, "+faststart") {
		t.Error("faststart must stay off unless requested")
	}
	if args[len(args)-2] != "-y" || args[len(args)-1] != "out.mp4" {
		t.Errorf("output must come last: %v", args)
	}
}

func TestTranscodeArgsExtraArgsBeforeOutput(t *testing.T) {
	opts := DefaultTranscodeOptions()
	opts.ExtraArgs = []string{"-t", "60"}
	args := opts.args("in.mkv", "out.mp4")
	idx := slices.Index(args, "-t")
	if idx == -1 || idx >= slices.Index(args, "-y") {
		t.Errorf("extra args must precede the output flag: %v", args)
	}
}
