package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Advansoftware/m3utostrm/internal/config"
	"github.com/Advansoftware/m3utostrm/internal/output"
	"github.com/Advansoftware/m3utostrm/internal/pipeline"
	"github.com/Advansoftware/m3utostrm/internal/playlist"
)

func newProcessCmd() *cobra.Command {
	var (
		sourceURL  string
		sourceFile string
		moviesDir  string
		seriesDir  string
		noMovies   bool
		noSeries   bool
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run a one-shot playlist to STRM conversion",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				output.PrintError("Error loading configuration: " + err.Error())
				os.Exit(1)
			}
			opts := pipeline.Options{
				Source:        cfg.M3UURL,
				UseFile:       cfg.UseFile,
				MoviesDir:     cfg.MoviesDir,
				SeriesDir:     cfg.SeriesDir,
				ProcessMovies: cfg.ProcessMovies && !noMovies,
				ProcessSeries: cfg.ProcessSeries && !noSeries,
			}
			if cfg.UseFile {
				opts.Source = cfg.M3UFile
			}
			if sourceURL != "" {
				opts.Source = sourceURL
				opts.UseFile = false
			}
			if sourceFile != "" {
				opts.Source = sourceFile
				opts.UseFile = true
			}
			if moviesDir != "" {
				opts.MoviesDir = moviesDir
			}
			if seriesDir != "" {
				opts.SeriesDir = seriesDir
			}
			if opts.Source == "" {
				output.PrintError("No playlist source given (set m3u_url in the config or pass --url/--file)")
				os.Exit(1)
			}
			opts.Progress = func(item playlist.Classified, processed, total int) {
				output.PrintProgressLine(int64(processed+1), int64(total), item.Title)
			}

			orchestrator := pipeline.New()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				orchestrator.Cancel()
			}()

			output.PrintHeader("Processing playlist " + opts.Source)
			if err := orchestrator.Run(opts); err != nil {
				fmt.Println()
				output.PrintError("Playlist processing failed: " + err.Error())
				os.Exit(1)
			}
			fmt.Println()
			output.PrintSuccess("Playlist processed")
		},
	}
	cmd.Flags().StringVar(&sourceURL, "url", "", "Playlist URL (http(s):// or s3://)")
	cmd.Flags().StringVar(&sourceFile, "file", "", "Local playlist file")
	cmd.Flags().StringVar(&moviesDir, "movies-dir", "", "Destination root for movie pointer files")
	cmd.Flags().StringVar(&seriesDir, "series-dir", "", "Destination root for series pointer files")
	cmd.Flags().BoolVar(&noMovies, "no-movies", false, "Skip movie entries")
	cmd.Flags().BoolVar(&noSeries, "no-series", false, "Skip series entries")
	return cmd
}
