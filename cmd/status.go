package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/rag"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store health, document count, and model configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	printStatus(cmd.OutOrStdout(), a.Engine.Status(ctx))
	return nil
}

func printStatus(w io.Writer, status rag.SystemStatus) {
	health := "healthy"
	if !status.StoreHealthy {
		health = "unhealthy"
	}
	fmt.Fprintf(w, "Store:         %s\n", health)
	fmt.Fprintf(w, "Documents:     %d\n", status.DocumentCount)
	fmt.Fprintf(w, "Collection:    %s\n", status.Collection)
	fmt.Fprintf(w, "Model:         %s\n", status.Model)
	fmt.Fprintf(w, "Embedder:      %s\n", status.EmbedderModel)
	fmt.Fprintf(w, "Conversations: %d\n", status.Conversations)
}
