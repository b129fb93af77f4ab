package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Advansoftware/m3utostrm/internal/utils"
)

var (
	cfgPath string
	debug   bool
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "m3utostrm",
	Short:   "m3utostrm turns IPTV playlists into STRM libraries and processes media downloads",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newQueueCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
