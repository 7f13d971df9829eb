package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the corpus",
	Long: `Answers one question from the indexed corpus and exits.
The answer ends with the sources it was drawn from.

Use 'docqa chat' for follow-up questions.

Examples:
  docqa ask "什麼是綜合所得稅？"
  docqa ask --json "What deductions are available?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer with citations as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question cannot be empty")
	}

	answer, err := newConversation().Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return writeJSON(cmd, answer)
	}
	cmd.Println(answer.Text)
	return nil
}
