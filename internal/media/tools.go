// Package media wraps the external tools (yt-dlp, ffmpeg, ffprobe) that do the
// actual downloading and transcoding. The rest of the system only sees typed
// options in, progress percentages out, and an exit-code success.
package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnsureYtdlp locates the yt-dlp binary in PATH or next to the executable.
func EnsureYtdlp() (string, error) {
	return ensureTool("yt-dlp")
}

// EnsureFFmpeg locates the ffmpeg binary in PATH or next to the executable.
func EnsureFFmpeg() (string, error) {
	return ensureTool("ffmpeg")
}

// EnsureFFprobe locates the ffprobe binary in PATH or next to the executable.
func EnsureFFprobe() (string, error) {
	return ensureTool("ffprobe")
}

func ensureTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, nil
	}
	execPath, err := os.Executable()
	if err == nil {
		toolPath := filepath.Join(filepath.Dir(execPath), name)
		if runtime.GOOS == "windows" {
			toolPath += ".exe"
		}
		if _, err := os.Stat(toolPath); err == nil {
			return toolPath, nil
		}
	}
	return "", fmt.Errorf("%s not found in PATH, please install manually", name)
}
