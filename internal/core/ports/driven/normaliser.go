package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser extracts plain text from raw content of a given format.
// Each normaliser handles specific formats (e.g., pdf, docx, vtt).
type Normaliser interface {
	// SupportedFormats returns the lower-case extensions this normaliser handles.
	SupportedFormats() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts text from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Content is the extracted plain text.
	Content string

	// Title is a best-effort title derived from the content or URI.
	Title string

	// Metadata holds extractor-specific attributes. Values may be non-scalar.
	Metadata map[string]any

	// Parts splits a multi-document source (e.g. one document per CSV row).
	// When non-empty, each part becomes its own document and Content is
	// ignored.
	Parts []NormalisedPart

	// Warnings describes parts of the source that could not be extracted.
	Warnings []string
}

// NormalisedPart is one document of a multi-document source.
type NormalisedPart struct {
	Content  string
	Metadata map[string]any
}
