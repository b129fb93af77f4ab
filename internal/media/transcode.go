package media

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Duration probes the total duration of the input in seconds, read from the
// ffmpeg banner. ffmpeg exits non-zero without an output file; only a missing
// Duration line counts as failure.
func Duration(ctx context.Context, inputPath string) (float64, error) {
	ffmpegPath, err := EnsureFFmpeg()
	if err != nil {
		return 0, fmt.Errorf("error ensuring ffmpeg: %v", err)
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, "-i", inputPath)
	output, _ := cmd.CombinedOutput()
	seconds, ok := parseDuration(string(output))
	if !ok {
		return 0, fmt.Errorf("could not determine duration of %s", inputPath)
	}
	return seconds, nil
}

// Transcode runs ffmpeg converting inputPath into outputPath. The total
// duration is probed first so stderr time= lines can be relayed as
// percentages; a failed probe disables progress but not the conversion.
func Transcode(ctx context.Context, inputPath, outputPath string, opts TranscodeOptions, onStart func(*Process), relay func(progress float64)) error {
	ffmpegPath, err := EnsureFFmpeg()
	if err != nil {
		return fmt.Errorf("error ensuring ffmpeg: %v", err)
	}
	totalSeconds, err := Duration(ctx, inputPath)
	if err != nil {
		log.Warn().Str("op", "media/transcode").Msgf("No duration for %s, progress disabled", inputPath)
		totalSeconds = 0
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, opts.args(inputPath, outputPath)...)
	log.Debug().Str("op", "media/transcode").Msgf("Executing ffmpeg command: %s", cmd.String())
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting ffmpeg: %v", err)
	}
	proc := newProcess(cmd, outputPath)
	defer proc.finish()
	if onStart != nil {
		onStart(proc)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if progress, ok := parseTranscodeProgress(line, totalSeconds); ok && relay != nil {
			relay(progress)
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v", err)
	}
	log.Info().Str("op", "media/transcode").Msgf("Transcode completed for %s", outputPath)
	return nil
}
