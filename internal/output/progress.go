package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ProgressBar renders a single-line progress bar for current/total items.
func ProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%% (%d/%d)", bar, percent*100, current, total))
}

// PrintProgressLine rewrites the current terminal line with a progress bar.
func PrintProgressLine(current, total int64, label string) {
	width := getTerminalWidth()
	barWidth := 30
	if width < 60 {
		barWidth = 10
	}
	line := ProgressBar(current, total, barWidth)
	if label != "" {
		maxLabel := width - 50
		if maxLabel > 0 && len(label) > maxLabel {
			label = label[:maxLabel]
		}
		line += " " + detailStyle.Render(label)
	}
	fmt.Print("\r\033[K" + line)
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
