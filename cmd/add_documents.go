package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/app"
	"github.com/siftlabs/sift/internal/ingest"
)

var (
	addType    string
	addPattern string
)

var addDocumentsCmd = &cobra.Command{
	Use:   "add-documents <source>",
	Short: "Ingest a file, directory, or URL into the knowledge store",
	Long: `Ingest documents into the knowledge store.

The source is a file path by default. Use --type directory to ingest every
supported file under a directory (optionally filtered with --pattern), or
--type url to fetch and ingest a web page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddDocuments(cmd, args[0])
	},
}

func init() {
	addDocumentsCmd.Flags().StringVar(&addType, "type", "file", "source type: file, directory, or url")
	addDocumentsCmd.Flags().StringVar(&addPattern, "pattern", ingest.DefaultPattern, "glob pattern for --type directory")
	rootCmd.AddCommand(addDocumentsCmd)
}

func runAddDocuments(cmd *cobra.Command, source string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var chunks []ingest.Chunk
	switch addType {
	case "file":
		chunks, err = a.Processor.ProcessFile(source)
	case "directory":
		chunks, err = a.Processor.ProcessDirectory(source, addPattern)
	case "url":
		chunks, err = a.Processor.ProcessURLs(ctx, []string{source})
	default:
		return fmt.Errorf("unknown source type %q (expected file, directory, or url)", addType)
	}
	if err != nil {
		return fmt.Errorf("processing %s: %w", source, err)
	}

	added, err := storeChunks(ctx, a, chunks)
	if err != nil {
		return err
	}

	stats := ingest.ComputeStats(chunks)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %d chunks from %d sources (mean size %.0f chars)\n",
		added, stats.UniqueSources, stats.MeanChunkSize)
	for ft, n := range stats.ByFileType {
		fmt.Fprintf(out, "  %s: %d chunks\n", ft, n)
	}
	return nil
}

// storeChunks embeds and persists chunks one by one. A failed chunk is
// logged and skipped; the count of stored chunks is returned.
func storeChunks(ctx context.Context, a *app.App, chunks []ingest.Chunk) (int, error) {
	added := 0
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if _, err := a.Store.Add(ctx, c.Content, c.Metadata); err != nil {
			a.Logger.Warn("skipping chunk", "source", c.Metadata["source"], "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		return 0, fmt.Errorf("no chunks could be stored")
	}
	return added, nil
}
