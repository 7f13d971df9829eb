package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(100))
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()
	doc := &domain.Document{ID: "test-doc"}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc", Content: "Tax deductions apply to X."}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != doc.Content {
		t.Errorf("expected content %q, got %q", doc.Content, chunks[0].Content)
	}
	if chunks[0].DocumentID != "test-doc" {
		t.Errorf("expected document id test-doc, got %s", chunks[0].DocumentID)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
}

func TestProcessor_Process_ExactOverlap(t *testing.T) {
	tests := []struct {
		name    string
		content string
		size    int
		overlap int
	}{
		{"no separators", strings.Repeat("abcdefghij", 50), 100, 20},
		{"words", strings.Repeat("lorem ipsum dolor sit amet ", 80), 120, 30},
		{"paragraphs", strings.Repeat("First line of a paragraph.\nSecond line.\n\n", 40), 150, 40},
		{"chinese sentences", strings.Repeat("稅務扣除適用於此項目。申報期限為五月底！", 60), 90, 15},
		{"defaults", strings.Repeat("A sentence about deductions. ", 200), DefaultChunkSize, DefaultChunkOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			chunks, err := p.Process(context.Background(), &domain.Document{ID: "d", Content: tt.content}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) < 2 {
				t.Fatalf("expected multiple chunks, got %d", len(chunks))
			}

			for i, c := range chunks {
				if n := utf8.RuneCountInString(c.Content); n > tt.size {
					t.Errorf("chunk %d has %d characters, max %d", i, n, tt.size)
				}
				if c.Position != i {
					t.Errorf("chunk %d has position %d", i, c.Position)
				}
				if !strings.Contains(tt.content, c.Content) {
					t.Errorf("chunk %d is not a substring of the content", i)
				}
				if i == 0 {
					continue
				}
				prev := []rune(chunks[i-1].Content)
				cur := []rune(c.Content)
				tail := string(prev[len(prev)-tt.overlap:])
				head := string(cur[:tt.overlap])
				if tail != head {
					t.Errorf("chunks %d/%d overlap mismatch: %q vs %q", i-1, i, tail, head)
				}
			}

			last := chunks[len(chunks)-1].Content
			if !strings.HasSuffix(tt.content, last) {
				t.Error("final chunk should end at the end of the content")
			}
		})
	}
}

func TestProcessor_Process_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("word ", 30) // 150 chars
	content := para + "\n\n" + para + "\n\n" + para

	p := New(WithChunkSize(200), WithOverlap(10))
	chunks, err := p.Process(context.Background(), &domain.Document{ID: "d", Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(chunks[0].Content, "\n\n") {
		t.Errorf("expected first chunk to end on a paragraph break, got %q", chunks[0].Content)
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	content := strings.Repeat("Deductions apply.\nCredits differ.\n\n", 100)
	doc := &domain.Document{ID: "doc-1", Content: content}
	p := New()

	first, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Content != second[i].Content {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunkID(t *testing.T) {
	if ChunkID("a", 0) != ChunkID("a", 0) {
		t.Error("expected stable chunk ids")
	}
	if ChunkID("a", 0) == ChunkID("a", 1) {
		t.Error("expected distinct ids per position")
	}
	if ChunkID("a", 1) == ChunkID("b", 1) {
		t.Error("expected distinct ids per document")
	}
}
