// Package chunker provides a recursive, boundary-preferring text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// chunkNamespace seeds deterministic chunk ids.
var chunkNamespace = uuid.MustParse("8f4b8f3e-5d0a-4c43-9a8e-2f6b1c9d7e21")

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words.
// A chunk that fits no separator is cut at the size limit.
var DefaultSeparators = [][]string{
	{"\n\n"},
	{"\n"},
	{"。", "！", "？", "；", ". ", "! ", "? ", "; "},
	{" "},
}

// Processor splits document content into overlapping chunks.
// Sizes are measured in characters (runes), not bytes.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators [][][]rune
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(levels [][]string) Option {
	return func(p *Processor) {
		if len(levels) > 0 {
			p.separators = toRunes(levels)
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Consecutive chunks share exactly the configured overlap.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	text := []rune(doc.Content)
	spans := p.split(text)

	chunks := make([]domain.Chunk, 0, len(spans))
	for position, span := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, position),
			DocumentID: doc.ID,
			Content:    string(text[span[0]:span[1]]),
			Position:   position,
		})
	}

	return chunks, nil
}

// ChunkID returns the deterministic id of the chunk at position in a document.
func ChunkID(documentID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s:%d", documentID, position))).String()
}

// split returns [start, end) rune spans covering text.
func (p *Processor) split(text []rune) [][2]int {
	var spans [][2]int
	start := 0
	for {
		if len(text)-start <= p.chunkSize {
			spans = append(spans, [2]int{start, len(text)})
			return spans
		}
		end := p.boundary(text, start)
		spans = append(spans, [2]int{start, end})
		start = end - p.overlap
	}
}

// boundary picks the end of the chunk starting at start. It prefers the
// latest cut after the coarsest separator that fits in the window and
// still leaves room for the overlap, falling back to a hard cut.
func (p *Processor) boundary(text []rune, start int) int {
	limit := start + p.chunkSize
	minEnd := start + p.overlap + 1

	for _, level := range p.separators {
		best := -1
		for _, sep := range level {
			if end := lastCut(text, sep, minEnd, limit); end > best {
				best = end
			}
		}
		if best > 0 {
			return best
		}
	}
	return limit
}

// lastCut returns the largest e in [minEnd, limit] where text[:e] ends with sep,
// or -1.
func lastCut(text, sep []rune, minEnd, limit int) int {
	for e := limit; e >= minEnd; e-- {
		if e < len(sep) {
			return -1
		}
		if hasSuffixAt(text, sep, e) {
			return e
		}
	}
	return -1
}

func hasSuffixAt(text, sep []rune, end int) bool {
	offset := end - len(sep)
	for i, r := range sep {
		if text[offset+i] != r {
			return false
		}
	}
	return true
}

func toRunes(levels [][]string) [][][]rune {
	out := make([][][]rune, 0, len(levels))
	for _, level := range levels {
		seps := make([][]rune, 0, len(level))
		for _, s := range level {
			if s != "" {
				seps = append(seps, []rune(s))
			}
		}
		out = append(out, seps)
	}
	return out
}
