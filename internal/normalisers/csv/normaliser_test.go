package csv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNormalise_RowsBecomeParts(t *testing.T) {
	src := "item,rate,note\nmortgage interest,100%,capped\n\nmedical,,\"over 7.5%\"\ncharity,60%,cash,extra\n"

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "documents/deduction_rates.csv",
		Format:  "csv",
		Content: []byte(src),
	})
	require.NoError(t, err)
	require.Len(t, result.Parts, 3)

	assert.Equal(t, "item: mortgage interest\nrate: 100%\nnote: capped", result.Parts[0].Content)
	assert.Equal(t, "item: medical\nnote: over 7.5%", result.Parts[1].Content)
	assert.Equal(t, "item: charity\nrate: 60%\nnote: cash\ncolumn_4: extra", result.Parts[2].Content)
	assert.Equal(t, 0, result.Parts[0].Metadata["row"])
	assert.Equal(t, "deduction rates", result.Title)
	assert.Equal(t, 3, result.Metadata["rows"])
	assert.Equal(t, []string{"item", "rate", "note"}, result.Metadata["columns"])
	assert.Empty(t, result.Warnings)
}

func TestNormalise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"header only", "a,b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "x.csv", Content: []byte(tt.content)})
			assert.ErrorIs(t, err, domain.ErrExtractionFailed)
		})
	}

	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"csv"}, New().SupportedFormats())
	assert.Equal(t, 50, New().Priority())
}
