package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/api"
	"github.com/siftlabs/sift/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", api.DefaultAddr, "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Logger.Info("starting sift server", "version", Version, "addr", serveAddr)

	server := api.NewServer(a.Engine, a.Store, a.Logger.With("component", "api"))

	ui, err := web.NewServer(a.Engine, a.Store, a.Processor, a.Logger.With("component", "web"))
	if err != nil {
		return fmt.Errorf("creating web UI: %w", err)
	}
	server.Mount(ui.RegisterRoutes)

	if err := server.Run(ctx, serveAddr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
