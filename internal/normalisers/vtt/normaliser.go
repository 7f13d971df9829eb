// Package vtt extracts transcript text from WebVTT caption files.
package vtt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// reTag matches inline cue markup such as <c>, </c> and <00:00:01.250>.
var reTag = regexp.MustCompile(`<[^>]*>`)

// Normaliser handles WebVTT caption files.
type Normaliser struct{}

// New creates a VTT normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFormats returns the formats this normaliser handles.
func (n *Normaliser) SupportedFormats() []string {
	return []string{"vtt"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts captions into a single line of transcript text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := plaintext.DecodeUTF8(raw.Content)
	if err != nil {
		return nil, err
	}

	transcript := Parse(text)
	if transcript == "" {
		return nil, fmt.Errorf("%w: captions contain no text", domain.ErrExtractionFailed)
	}

	return &driven.NormaliseResult{
		Content:  transcript,
		Metadata: map[string]any{"format": "vtt"},
	}, nil
}

// Parse returns the cue text of a WebVTT file joined with single spaces.
// The header block, NOTE/STYLE/REGION blocks, timing lines and blank
// lines are dropped. Block keywords are only recognised on the first line
// of a block, so cue text may start with them. Consecutive
// repeated lines, common in rolling auto captions, collapse into one.
func Parse(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		out        []string
		last       string
		skipBlk    bool
		blockStart = true
		header     = true
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			skipBlk = false
			blockStart = true
			continue
		}
		first, isHeader := blockStart, header
		blockStart, header = false, false

		if skipBlk {
			continue
		}
		if (isHeader && strings.HasPrefix(trimmed, "WEBVTT")) || (first && isBlockKeyword(trimmed)) {
			skipBlk = true
			continue
		}
		if strings.Contains(trimmed, "-->") {
			continue
		}

		cue := strings.TrimSpace(reTag.ReplaceAllString(trimmed, ""))
		if cue == "" || cue == last {
			continue
		}
		out = append(out, cue)
		last = cue
	}

	return strings.Join(out, " ")
}

func isBlockKeyword(line string) bool {
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if line == kw || strings.HasPrefix(line, kw+" ") || strings.HasPrefix(line, kw+"\t") {
			return true
		}
	}
	return false
}
