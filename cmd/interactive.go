package cmd

import (
	"bufio"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/rag"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive question-answering session",
	Long: `Start a REPL with conversation memory. Follow-up questions see the
recent turns of the session.

Keywords: quit or exit to leave, clear to reset the conversation,
status to show system state.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Each session gets its own conversation; memory does not survive the
	// process.
	conversationID := uuid.NewString()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "sift interactive session. Type 'quit' to exit, 'clear' to reset, 'status' for system state.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			fmt.Fprintln(out, "Bye.")
			return nil
		case "clear":
			a.Engine.ClearConversation(conversationID)
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "status":
			printStatus(out, a.Engine.Status(ctx))
			continue
		}

		result := a.Engine.Query(ctx, line, rag.WithConversation(conversationID))
		printResult(out, result)
	}
	return scanner.Err()
}
