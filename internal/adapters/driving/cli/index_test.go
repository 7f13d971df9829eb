package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestIndexCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(indexCmd.Commands()))
	for _, c := range indexCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"rebuild", "status"}, names)
}

func TestIndexRebuildCmd_ReportsSkipped(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()
	mocks.index.result.Skipped = []domain.ItemError{
		{Item: "broken.pdf", Err: fmt.Errorf("%w: no text extracted", domain.ErrExtractionFailed)},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "rebuild"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "✗ broken.pdf [extraction_failed] extraction failed: no text extracted")
	assert.Contains(t, out, "Indexed 2 documents as 12 chunks with text-embedding-3-small.")
	assert.Contains(t, out, "Skipped 1 items.")
}

func TestIndexRebuildCmd_EmptyCorpus(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()
	mocks.index.err = domain.ErrEmptyCorpus

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"index", "rebuild"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestIndexStatusCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "status"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Backend:    sqlite")
	assert.Contains(t, out, "Records:    12")
	assert.Contains(t, out, "Dimensions: 1536")
	assert.Contains(t, out, "Built at:   2024-03-01 09:30:00")
}

func TestIndexStatusCmd_NotBuilt(t *testing.T) {
	cleanup, mocks := setupTestServicesWithMocks()
	defer cleanup()
	mocks.index.err = domain.ErrIndexNotReady

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "status"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No index has been built yet")
}

func TestIndexCmd_NoService(t *testing.T) {
	prev := indexService
	indexService = nil
	defer func() { indexService = prev }()

	assert.EqualError(t, rebuildIndex(indexRebuildCmd), "index service not configured")
	assert.EqualError(t, runIndexStatus(indexStatusCmd, nil), "index service not configured")
}
