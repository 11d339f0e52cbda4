// Package cmd implements the sift command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/app"
	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/log"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "sift - question answering grounded in your documents",
	Long: `sift ingests documents into a vector store and answers questions
grounded in them. Running sift without a subcommand starts the
interactive session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// newLogger builds the process logger from the --debug flag.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}

// setupApp loads configuration and builds the application container.
func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, newLogger())
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}
