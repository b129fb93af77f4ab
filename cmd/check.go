package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Advansoftware/m3utostrm/internal/media"
	"github.com/Advansoftware/m3utostrm/internal/output"
	"github.com/Advansoftware/m3utostrm/internal/playlist"
	"github.com/Advansoftware/m3utostrm/internal/utils"
)

func newCheckCmd() *cobra.Command {
	var probeMedia bool
	cmd := &cobra.Command{
		Use:   "check [URL]",
		Short: "Test a playlist source, or probe a media URL with --media",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			url := args[0]
			if probeMedia {
				info, err := media.Probe(context.Background(), url)
				if err != nil {
					output.PrintError("Probe failed: " + err.Error())
					os.Exit(1)
				}
				pretty, _ := json.MarshalIndent(info, "", "  ")
				output.PrintSuccess("Media is playable")
				if size, err := strconv.ParseUint(info.Size, 10, 64); err == nil && size > 0 {
					output.PrintDetail("Size: " + utils.FormatBytes(size))
				}
				fmt.Println(string(pretty))
				return
			}
			result := playlist.TestConnection(url)
			if !result.OK {
				output.PrintError(output.StyleSymbols["fail"] + " " + result.Reason)
				os.Exit(1)
			}
			output.PrintSuccess(output.StyleSymbols["pass"] + " " + result.Reason)
		},
	}
	cmd.Flags().BoolVar(&probeMedia, "media", false, "Probe a media URL with ffprobe instead of testing a playlist")
	return cmd
}
