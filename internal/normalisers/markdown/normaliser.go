// Package markdown handles Markdown files, stripping formatting syntax
// so chunks embed prose rather than markup.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	reFence      = regexp.MustCompile("(?m)^[ \\t]*```.*$")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeading    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	reEmphasis   = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	reQuote      = regexp.MustCompile(`(?m)^>[ \t]?`)
	reRule       = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	reBullet     = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	reNumbered   = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	reBlankRun   = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles markdown documents.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFormats returns the formats this normaliser handles.
func (n *Normaliser) SupportedFormats() []string {
	return []string{"md", "markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Higher than plaintext
}

// Normalise strips markdown syntax. The first level-one heading becomes the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := plaintext.DecodeUTF8(raw.Content)
	if err != nil {
		return nil, err
	}

	return &driven.NormaliseResult{
		Content:  stripMarkdown(text),
		Title:    extractTitle(text, raw.URI),
		Metadata: map[string]any{"format": "markdown"},
	}, nil
}

// extractTitle returns the first "# " heading or a title derived from the URI.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

// stripMarkdown removes markup while keeping code, link and image text.
func stripMarkdown(content string) string {
	content = reFence.ReplaceAllString(content, "")
	content = reInlineCode.ReplaceAllString(content, "$1")
	content = reImage.ReplaceAllString(content, "$1")
	content = reLink.ReplaceAllString(content, "$1")
	content = reHeading.ReplaceAllString(content, "")
	content = reRule.ReplaceAllString(content, "")
	content = reEmphasis.ReplaceAllString(content, "$2")
	content = reQuote.ReplaceAllString(content, "")
	content = reBullet.ReplaceAllString(content, "")
	content = reNumbered.ReplaceAllString(content, "")
	content = reBlankRun.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
