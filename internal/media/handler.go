package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/queue"
	"github.com/Advansoftware/m3utostrm/internal/utils"
)

// Handler executes queued jobs: download jobs run yt-dlp straight into the
// host directory, conversion jobs run ffmpeg into the processed directory and
// publish the result to the host directory. It implements queue.Runner.
type Handler struct {
	UploadDir    string
	ProcessedDir string
	HostDir      string
	Transcode    TranscodeOptions
}

func NewHandler(uploadDir, processedDir, hostDir string) *Handler {
	return &Handler{
		UploadDir:    uploadDir,
		ProcessedDir: processedDir,
		HostDir:      hostDir,
		Transcode:    DefaultTranscodeOptions(),
	}
}

// Run drives one job to completion. A job with a rendition selector is a plain
// download; anything else is a conversion of the source into the requested
// output format.
func (h *Handler) Run(ctx context.Context, item queue.Item, start func(queue.ProcessHandle), relay func(progress float64, status queue.Status)) error {
	ext := item.OutputFormat
	if ext == "" {
		ext = "mp4"
	}
	if item.FormatID != "" {
		stem := fmt.Sprintf("%s-%s", utils.SanitizeFilename(item.Filename), shortID(item.ID))
		return h.download(ctx, item, stem, ext, start, relay)
	}
	// Conversion sources are raw URLs, so the output gets a generated name.
	stem := fmt.Sprintf("%s-%s", utils.RandomString(6), shortID(item.ID))
	return h.convert(ctx, item, stem, ext, start, relay)
}

func (h *Handler) download(ctx context.Context, item queue.Item, stem, ext string, start func(queue.ProcessHandle), relay func(float64, queue.Status)) error {
	target := filepath.Join(h.HostDir, stem+"."+ext)
	if _, err := os.Stat(target); err == nil {
		target = utils.RenewOutputPath(target)
	}
	opts := DownloadOptions{
		URL:        item.URL,
		OutputPath: target,
		FormatID:   item.FormatID,
	}
	return Download(ctx, opts,
		func(proc *Process) { start(proc) },
		func(progress float64) { relay(progress, queue.StatusDownloading) },
	)
}

func (h *Handler) convert(ctx context.Context, item queue.Item, stem, ext string, start func(queue.ProcessHandle), relay func(float64, queue.Status)) error {
	outputPath := filepath.Join(h.ProcessedDir, stem+"."+ext)
	err := Transcode(ctx, item.URL, outputPath, h.Transcode,
		func(proc *Process) { start(proc) },
		func(progress float64) { relay(progress, queue.StatusConverting) },
	)
	if err != nil {
		return err
	}
	relay(100, queue.StatusProcessing)
	hostPath := filepath.Join(h.HostDir, filepath.Base(outputPath))
	if err := copyFile(outputPath, hostPath); err != nil {
		return fmt.Errorf("error publishing output: %v", err)
	}
	if err := os.Remove(outputPath); err != nil {
		log.Warn().Str("op", "media/handler").Msgf("Error removing intermediate file %s: %v", outputPath, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
