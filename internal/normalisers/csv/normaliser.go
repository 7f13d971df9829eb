// Package csv turns each row of a CSV file into its own document.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV files. The first record is the header; every
// following record becomes a part rendered as "column: value" lines.
type Normaliser struct{}

// New creates a CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFormats returns the formats this normaliser handles.
func (n *Normaliser) SupportedFormats() []string {
	return []string{"csv"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise splits the file into one part per row. Malformed rows are
// skipped and reported as warnings; the remaining rows still succeed.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := plaintext.DecodeUTF8(raw.Content)
	if err != nil {
		return nil, err
	}

	r := stdcsv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrExtractionFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrExtractionFailed, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(string(bytes.TrimPrefix([]byte(header[i]), []byte{0xEF, 0xBB, 0xBF})))
	}

	result := &driven.NormaliseResult{
		Title:    titleFromURI(raw.URI),
		Metadata: map[string]any{"format": "csv", "columns": header},
	}

	for row := 0; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		content := renderRow(header, record)
		if content == "" {
			continue
		}
		result.Parts = append(result.Parts, driven.NormalisedPart{
			Content:  content,
			Metadata: map[string]any{"row": row},
		})
	}

	if len(result.Parts) == 0 {
		return nil, fmt.Errorf("%w: csv has no data rows", domain.ErrExtractionFailed)
	}
	result.Metadata["rows"] = len(result.Parts)
	return result, nil
}

// renderRow renders "column: value" lines, skipping empty values.
// Columns beyond the header are named by position.
func renderRow(header, record []string) string {
	var lines []string
	for i, value := range record {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && header[i] != "" {
			name = header[i]
		}
		lines = append(lines, name+": "+value)
	}
	return strings.Join(lines, "\n")
}

func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
