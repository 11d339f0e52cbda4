package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/rag"
)

var (
	querySources   int
	queryThreshold float64
	queryMemory    bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a single question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, args[0])
	},
}

func init() {
	queryCmd.Flags().IntVar(&querySources, "sources", 4, "number of chunks to retrieve")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "minimum similarity score (0.0-1.0)")
	queryCmd.Flags().BoolVar(&queryMemory, "memory", false, "record the turn in conversation memory")
	rootCmd.AddCommand(queryCmd)
}

// queryOptions builds the engine options from the query flags. With --memory
// the turn runs under a fresh conversation ID, so the exchange is recorded
// the same way interactive mode records it.
func queryOptions() []rag.QueryOption {
	opts := []rag.QueryOption{
		rag.WithSources(querySources),
		rag.WithThreshold(queryThreshold),
	}
	if queryMemory {
		opts = append(opts, rag.WithConversation(uuid.NewString()))
	}
	return opts
}

func runQuery(cmd *cobra.Command, question string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.Engine.Query(ctx, question, queryOptions()...)
	printResult(cmd.OutOrStdout(), result)
	if result.Status == rag.StatusError {
		return fmt.Errorf("query failed: %s", result.Error)
	}
	return nil
}

// printResult renders an answer and its sources for the terminal.
func printResult(w io.Writer, result *rag.Result) {
	if result.Status == rag.StatusError {
		fmt.Fprintf(w, "Error: %s\n", result.Error)
		return
	}

	fmt.Fprintln(w, result.Answer)
	if len(result.Sources) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSources (%d):\n", len(result.Sources))
	for i, src := range result.Sources {
		name := src.Metadata["source"]
		if name == "" {
			name = src.ID
		}
		fmt.Fprintf(w, "  %d. %s (similarity %.2f)\n     %s\n", i+1, name, src.Similarity, src.Preview)
	}
}
