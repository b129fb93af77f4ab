package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Download runs yt-dlp for opts.URL into opts.OutputPath. onStart receives the
// process handle as soon as the subprocess is up; relay gets every parseable
// progress percentage. Success is decided by the exit code.
func Download(ctx context.Context, opts DownloadOptions, onStart func(*Process), relay func(progress float64)) error {
	ytdlpPath, err := EnsureYtdlp()
	if err != nil {
		return fmt.Errorf("error ensuring yt-dlp: %v", err)
	}
	format := opts.FormatID
	if format == "" {
		format = "best"
	}
	args := []string{
		"--no-check-certificate",
		"--progress",
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"-f", format,
		"-o", opts.OutputPath,
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, opts.URL)

	cmd := exec.CommandContext(ctx, ytdlpPath, args...)
	log.Debug().Str("op", "media/download").Msgf("Executing yt-dlp command: %s", cmd.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error creating stdout pipe: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting yt-dlp: %v", err)
	}
	proc := newProcess(cmd, opts.OutputPath)
	defer proc.finish()
	if onStart != nil {
		onStart(proc)
	}

	go drainStream(stderr)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if progress, ok := parseDownloadProgress(line); ok && relay != nil {
			relay(progress)
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("yt-dlp failed: %v", err)
	}
	log.Info().Str("op", "media/download").Msgf("yt-dlp download completed for %s", opts.URL)
	return nil
}

func drainStream(reader io.Reader) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			log.Debug().Str("op", "media/stream").Msg(line)
		}
	}
}
