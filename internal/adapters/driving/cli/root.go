// Package cli provides the cobra command tree for docqa.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Driving ports used by the commands. They are set once at startup by
// SetServices and may be nil in tests.
var (
	corpusService   driving.CorpusService
	ingestService   driving.IngestService
	indexService    driving.IndexService
	settingsService driving.SettingsService
	newConversation func() driving.ConversationService
	watchPrompts    func(ctx context.Context) error
)

// Services holds the driving ports the commands call into.
type Services struct {
	Corpus   driving.CorpusService
	Ingest   driving.IngestService
	Index    driving.IndexService
	Settings driving.SettingsService

	// NewConversation starts an empty conversation over the shared index.
	NewConversation func() driving.ConversationService

	// WatchPrompts reloads prompt templates on change until ctx is done.
	// Long-running commands run it in the background when set.
	WatchPrompts func(ctx context.Context) error
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents and videos",
	Long: `docqa answers questions from a private corpus of documents and
YouTube transcripts, citing the sources each answer was drawn from.

Add material with 'docqa ingest', build the index with 'docqa index rebuild',
then ask with 'docqa ask' or start a conversation with 'docqa chat'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// SetServices installs the driving ports used by the commands.
func SetServices(s Services) {
	corpusService = s.Corpus
	ingestService = s.Ingest
	indexService = s.Index
	settingsService = s.Settings
	newConversation = s.NewConversation
	watchPrompts = s.WatchPrompts
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// startPromptWatcher reloads prompts in the background until ctx is done.
func startPromptWatcher(ctx context.Context) {
	if watchPrompts == nil {
		return
	}
	go func() {
		if err := watchPrompts(ctx); err != nil {
			logger.Warn("prompt watcher stopped: %v", err)
		}
	}()
}
