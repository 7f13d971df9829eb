package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestVideos   []string
	ingestCategory string
	ingestTags     []string
	ingestRebuild  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Add documents and videos to the corpus",
	Long: `Adds files and YouTube videos to the corpus.

Files are extracted and stored; videos are fetched as caption transcripts.
Each item succeeds or fails on its own. Failed items are reported and
skipped. The index is not rebuilt unless --rebuild is given.

Supported file formats: pdf, docx, doc, txt, md, csv.

Examples:
  docqa ingest guide.pdf notes.md --category 稅務 --tags 2024,deductions
  docqa ingest --video https://youtu.be/abc123 --rebuild`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringArrayVar(&ingestVideos, "video", nil, "YouTube video URL (repeatable)")
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", "", "category for every ingested item")
	ingestCmd.Flags().StringSliceVarP(&ingestTags, "tags", "t", nil, "comma-separated tags for every ingested item")
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "rebuild the index after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if len(args) == 0 && len(ingestVideos) == 0 {
		return errors.New("nothing to ingest: pass files or --video URLs")
	}

	class := domain.Classification{Category: ingestCategory, Tags: ingestTags}

	var (
		reqs    []domain.IngestRequest
		reports []domain.IngestReport
	)
	for _, path := range args {
		src, err := readFileSource(path, class)
		if err != nil {
			reports = append(reports, domain.IngestReport{Item: path, Err: err})
			continue
		}
		reqs = append(reqs, domain.IngestRequest{File: src})
	}
	for _, url := range ingestVideos {
		reqs = append(reqs, domain.IngestRequest{Video: &domain.VideoSource{URL: url, Classification: class}})
	}

	reports = append(reports, ingestService.IngestBatch(cmd.Context(), reqs)...)

	ingested := printIngestReports(cmd, reports)
	cmd.Printf("\nIngested %d of %d items.\n", ingested, len(reports))

	if ingested == 0 {
		return errors.New("no items were ingested")
	}
	if ingestRebuild {
		cmd.Println()
		return rebuildIndex(cmd)
	}
	cmd.Println("Run 'docqa index rebuild' to make them searchable.")
	return nil
}

// readFileSource loads one file argument.
func readFileSource(path string, class domain.Classification) (*domain.FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.ItemError{Item: path, Err: fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)}
	}
	if info.IsDir() {
		return nil, &domain.ItemError{Item: path, Err: fmt.Errorf("%w: is a directory", domain.ErrInvalidInput)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ItemError{Item: path, Err: fmt.Errorf("read file: %w", err)}
	}
	return &domain.FileSource{
		Name:           filepath.Base(path),
		Content:        content,
		Classification: class,
	}, nil
}

// printIngestReports prints one line per item and returns the success count.
func printIngestReports(cmd *cobra.Command, reports []domain.IngestReport) int {
	ok := 0
	for _, r := range reports {
		if r.OK() {
			ok++
			cmd.Printf("  ✓ %s (%s)\n", r.Item, pluralise(len(r.Documents), "document"))
			continue
		}
		cmd.Printf("  ✗ %s [%s] %s\n", r.Item, domain.Kind(r.Err), itemCause(r.Err))
	}
	return ok
}

// itemCause strips the item prefix from an ItemError message.
func itemCause(err error) string {
	var ie *domain.ItemError
	if errors.As(err, &ie) && ie.Err != nil {
		return ie.Err.Error()
	}
	return err.Error()
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(noun, "s"))
}
