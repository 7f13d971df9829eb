package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Output formats for corpus listings.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	corpusOutput   string
	corpusCategory string
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the document corpus",
	Long:  `List and inspect the files and videos registered in the corpus.`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documents",
	Long: `Lists every registered document in ingestion order.

Examples:
  docqa corpus list
  docqa corpus list --category 稅務 --output yaml`,
	Args: cobra.NoArgs,
	RunE: runCorpusList,
}

var corpusShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one registered document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusShow,
}

func init() {
	corpusListCmd.Flags().StringVarP(&corpusOutput, "output", "o", outputTable, "output format: table, json or yaml")
	corpusListCmd.Flags().StringVarP(&corpusCategory, "category", "c", "", "only list entries in this category")
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusShowCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	entries, err := corpusService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list corpus: %w", err)
	}
	entries = filterByCategory(entries, corpusCategory)

	switch strings.ToLower(corpusOutput) {
	case outputJSON:
		return writeJSON(cmd, entries)
	case outputYAML:
		return writeYAML(cmd, entries)
	case outputTable:
		return writeCorpusTable(cmd, entries)
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", corpusOutput)
	}
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	entry, err := corpusService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:       %s\n", entry.ID)
	cmd.Printf("Name:     %s\n", entry.Name)
	cmd.Printf("Type:     %s\n", entry.Type)
	cmd.Printf("Format:   %s\n", entry.Format)
	cmd.Printf("Category: %s\n", entry.Category)
	cmd.Printf("Tags:     %s\n", entry.TagString())
	cmd.Printf("Added:    %s\n", entry.AddedAt.Format(domain.MetaDateLayout))
	cmd.Printf("Path:     %s\n", entry.Path)
	if entry.Type == domain.DocumentTypeVideo {
		cmd.Printf("URL:      %s\n", entry.VideoURL)
		cmd.Printf("Author:   %s\n", entry.Author)
	}
	return nil
}

func filterByCategory(entries []domain.CorpusEntry, category string) []domain.CorpusEntry {
	if category == "" {
		return entries
	}
	var out []domain.CorpusEntry
	for _, e := range entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

func writeCorpusTable(cmd *cobra.Command, entries []domain.CorpusEntry) error {
	if len(entries) == 0 {
		cmd.Println("No documents found. Add some with 'docqa ingest'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCATEGORY\tTAGS\tADDED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Type, e.Category, e.TagString(), e.AddedAt.Format(domain.MetaDateLayout))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\n%d documents\n", len(entries))
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
