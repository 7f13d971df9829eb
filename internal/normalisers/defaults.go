package normalisers

import (
	"github.com/custodia-labs/docqa/internal/normalisers/csv"
	"github.com/custodia-labs/docqa/internal/normalisers/docx"
	"github.com/custodia-labs/docqa/internal/normalisers/markdown"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/normalisers/vtt"
)

// RegisterDefaults registers all built-in normalisers with the registry.
// The PDF normaliser is registered even when pdftotext is missing; it
// reports ErrPDFToolNotFound on use.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(csv.New())
	r.Register(vtt.New())
}

// NewDefaultRegistry returns a registry with all built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
