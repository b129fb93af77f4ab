package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Advansoftware/m3utostrm/internal/config"
	"github.com/Advansoftware/m3utostrm/internal/media"
	"github.com/Advansoftware/m3utostrm/internal/output"
	"github.com/Advansoftware/m3utostrm/internal/queue"
	"github.com/Advansoftware/m3utostrm/internal/server"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, websocket hub and queue processor",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				output.PrintError("Error loading configuration: " + err.Error())
				os.Exit(1)
			}
			if port != 0 {
				cfg.Port = port
			}
			if err := cfg.EnsureDirs(); err != nil {
				output.PrintError("Error preparing directories: " + err.Error())
				os.Exit(1)
			}

			hub := server.NewHub()
			q := queue.New(cfg.QueueFile, hub)
			if err := q.Load(); err != nil {
				output.PrintError("Error loading queue: " + err.Error())
				os.Exit(1)
			}
			hub.Bind(q)

			handler := media.NewHandler(cfg.UploadDir, cfg.ProcessedDir, cfg.HostDir)
			processor := queue.NewProcessor(q, handler)
			processor.SetRetention(time.Duration(cfg.RetentionDays) * 24 * time.Hour)
			processor.Start()

			srv := server.New(cfg, cfgPath, q, hub)
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
				<-sigCh
				output.PrintWarning("Shutting down...")
				processor.Stop()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()

			if err := srv.Start(); err != nil {
				output.PrintError("Server error: " + err.Error())
				os.Exit(1)
			}
			output.PrintSuccess("Server stopped")
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override the configured listen port")
	return cmd
}
