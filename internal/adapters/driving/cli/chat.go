package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/logger"
)

var chatMenu bool

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Launch the interactive terminal UI for asking questions.

Follow-up questions are answered with the earlier turns as context.
Type /clear or press ctrl+l to start a new conversation.

Controls:
  Enter     - Ask
  PgUp/PgDn - Scroll the transcript
  Esc       - Back to menu
  ?         - Toggle help
  ctrl+c    - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatMenu, "menu", false, "open the main menu instead of the chat view")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if newConversation == nil {
		return errors.New("conversation service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Prompt edits apply to the next question without restarting.
	startPromptWatcher(ctx)

	ports := &tui.Ports{
		Conversation: newConversation(),
		Corpus:       corpusService,
		Index:        indexService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if !chatMenu {
		app.StartInChat()
	}
	app.WithContext(ctx)

	// Log lines would tear the alternate screen.
	logger.SetQuiet(true)
	defer logger.SetQuiet(false)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
