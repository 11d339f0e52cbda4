package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/ingest"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show application information",
	Run: func(cmd *cobra.Command, _ []string) {
		printInfo(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// printInfo writes a static summary of what sift is and how it is set up.
// It does not touch the database or any provider, so it works without
// configuration.
func printInfo(w io.Writer) {
	fmt.Fprintf(w, "sift %s - question answering grounded in your documents\n\n", Version)

	fmt.Fprintln(w, "Documents are split into chunks, embedded, and stored in PostgreSQL")
	fmt.Fprintln(w, "with pgvector. Questions retrieve the most similar chunks and are")
	fmt.Fprintln(w, "answered by the configured model, with source attribution.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Features:")
	fmt.Fprintln(w, "  - file, directory, and URL ingestion")
	fmt.Fprintln(w, "  - single questions, batch queries, and an interactive session")
	fmt.Fprintln(w, "  - conversation memory for follow-up questions")
	fmt.Fprintln(w, "  - HTTP API and a browser chat page (sift serve)")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Supported file types: %s\n\n", strings.Join(ingest.SupportedExtensions(), ", "))

	fmt.Fprintln(w, "Configuration: ~/.sift/config.yaml or ./config.yaml, SIFT_* environment")
	fmt.Fprintln(w, "variables, and GEMINI_API_KEY / OPENAI_API_KEY for the provider.")
	fmt.Fprintf(w, "Defaults: collection %q, chunk size %d (overlap %d), top-k %d\n",
		config.DefaultCollection, config.DefaultChunkSize, config.DefaultChunkOverlap, config.DefaultSearchTopK)
}
