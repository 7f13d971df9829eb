package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNormaliser_Normalise(t *testing.T) {
	tests := []struct {
		name    string
		raw     *domain.RawDocument
		content string
		title   string
		errIs   error
	}{
		{
			name:    "plain text",
			raw:     &domain.RawDocument{URI: "documents/tax_notes.txt", Content: []byte("Tax deductions apply to X.")},
			content: "Tax deductions apply to X.",
			title:   "tax notes",
		},
		{
			name:    "bom and crlf",
			raw:     &domain.RawDocument{URI: "a.txt", Content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("one\r\ntwo\rthree")...)},
			content: "one\ntwo\nthree",
			title:   "a",
		},
		{
			name:    "title from metadata",
			raw:     &domain.RawDocument{URI: "x.txt", Content: []byte("body"), Metadata: map[string]any{"title": "Original Name.txt"}},
			content: "body",
			title:   "Original Name.txt",
		},
		{
			name:  "invalid utf8",
			raw:   &domain.RawDocument{URI: "bad.txt", Content: []byte{0xff, 0xfe, 0xfd}},
			errIs: domain.ErrExtractionFailed,
		},
		{
			name:  "nil",
			errIs: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), tt.raw)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, result.Content)
			assert.Equal(t, tt.title, result.Title)
			assert.Equal(t, "txt", result.Metadata["format"])
		})
	}
}

func TestNormaliser_Formats(t *testing.T) {
	n := New()
	assert.Contains(t, n.SupportedFormats(), "txt")
	assert.Equal(t, 5, n.Priority())
}
