package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Advansoftware/m3utostrm/internal/config"
	"github.com/Advansoftware/m3utostrm/internal/output"
	"github.com/Advansoftware/m3utostrm/internal/queue"
)

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the persisted processing queue",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				output.PrintError("Error loading configuration: " + err.Error())
				os.Exit(1)
			}
			items, lastUpdate, err := queue.ReadSnapshot(cfg.QueueFile)
			if err != nil {
				output.PrintError("Error reading queue: " + err.Error())
				os.Exit(1)
			}
			if len(items) == 0 {
				output.PrintInfo("Queue is empty")
				return
			}
			output.PrintHeader(fmt.Sprintf("Queue (%d jobs, updated %s)", len(items), lastUpdate.Format(time.DateTime)))
			for _, item := range items {
				line := fmt.Sprintf("%s %s  %.1f%%  %s", styleStatus(item.Status), item.Filename, item.Progress, item.ID)
				fmt.Println(line)
				if item.Error != "" {
					output.PrintDetail("    " + item.Error)
				}
			}
		},
	}
}

func styleStatus(status queue.Status) string {
	padded := fmt.Sprintf("%-11s", status)
	switch status {
	case queue.StatusCompleted:
		return output.FSuccess(padded)
	case queue.StatusError:
		return output.FError(padded)
	case queue.StatusCancelled:
		return output.FWarning(padded)
	case queue.StatusPending:
		return output.FPending(padded)
	default:
		return output.FInfo(padded)
	}
}
