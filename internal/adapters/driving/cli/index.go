package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
	Long:  `Rebuild the vector index from the corpus or show its status.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from every registered item",
	Long: `Re-reads every registered item, chunks and embeds it, and replaces the
active index. Items that fail are skipped and reported. If the rebuild fails
the previous index stays active.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return rebuildIndex(cmd)
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active index",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func rebuildIndex(cmd *cobra.Command) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	cmd.Println("Rebuilding index...")
	result, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	for _, skipped := range result.Skipped {
		cmd.Printf("  ✗ %s [%s] %s\n", skipped.Item, domain.Kind(skipped.Err), itemCause(skipped.Err))
	}
	cmd.Printf("Indexed %s as %s with %s.\n",
		pluralise(result.Documents, "document"),
		pluralise(result.Chunks, "chunk"),
		result.Info.Model)
	if len(result.Skipped) > 0 {
		cmd.Printf("Skipped %d items.\n", len(result.Skipped))
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	info, err := indexService.Status(cmd.Context())
	if errors.Is(err, domain.ErrIndexNotReady) {
		cmd.Println("No index has been built yet. Run 'docqa index rebuild'.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index status: %w", err)
	}

	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Backend:    %s\n", info.Backend)
	cmd.Printf("  Records:    %d\n", info.Records)
	cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	cmd.Printf("  Model:      %s\n", info.Model)
	cmd.Printf("  Built at:   %s\n", info.BuiltAt.Format(domain.MetaDateLayout))
	return nil
}
