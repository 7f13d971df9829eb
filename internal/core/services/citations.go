package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	// MaxCitations caps the sources listed under an answer.
	MaxCitations = 3

	dedupeKeyRunes = 50
	previewRunes   = 100
)

// citationText holds the wording of the sources block for one language.
type citationText struct {
	header        string
	video         string
	file          string
	unknownSource string
}

var citationTexts = map[domain.Language]citationText{
	domain.LanguageTraditionalChinese: {
		header:        "\n\n**參考來源：**\n",
		video:         "%d. YouTube影片：%s (類別：%s)\n   相關內容：「%s」\n",
		file:          "%d. 文件：%s (類別：%s)\n   相關內容：「%s」\n",
		unknownSource: "未知來源",
	},
	domain.LanguageEnglish: {
		header:        "\n\n**Sources:**\n",
		video:         "%d. Video: %s (Category: %s)\n   Excerpt: \"%s\"\n",
		file:          "%d. File: %s (Category: %s)\n   Excerpt: \"%s\"\n",
		unknownSource: "Unknown source",
	},
}

// CitationFormatter deduplicates retrieval results and renders them as a
// sources block appended to an answer.
type CitationFormatter struct {
	text citationText
}

// NewCitationFormatter creates a formatter for lang. Unsupported languages
// fall back to Traditional Chinese.
func NewCitationFormatter(lang domain.Language) *CitationFormatter {
	text, ok := citationTexts[lang]
	if !ok {
		text = citationTexts[domain.LanguageTraditionalChinese]
	}
	return &CitationFormatter{text: text}
}

// Collect returns at most MaxCitations citations in retrieval order. Two
// results are duplicates when they share a document id and the first 50
// characters of text; the first occurrence wins.
func (f *CitationFormatter) Collect(results []domain.RetrievedChunk) []domain.Citation {
	seen := make(map[string]struct{}, len(results))
	var citations []domain.Citation

	for _, r := range results {
		if len(citations) == MaxCitations {
			break
		}

		docID := r.Metadata.String(domain.MetaDocID)
		if docID == "" {
			docID = r.DocumentID
		}
		key := docID + "_" + truncateRunes(r.Text, dedupeKeyRunes)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		source := r.Metadata.String(domain.MetaSource)
		if source == "" {
			source = f.text.unknownSource
		}
		citationType := domain.DocumentTypeFile
		if r.Metadata.String(domain.MetaType) == domain.DocumentTypeVideo.MetadataType() {
			citationType = domain.DocumentTypeVideo
		}

		citations = append(citations, domain.Citation{
			DocumentID: docID,
			SourceName: source,
			Type:       citationType,
			Category:   r.Metadata.String(domain.MetaCategory),
			Preview:    preview(r.Text),
			Score:      r.Score,
		})
	}
	return citations
}

// Format appends the sources block to answer. With no citations the
// answer is returned unchanged.
func (f *CitationFormatter) Format(answer string, citations []domain.Citation) string {
	if len(citations) == 0 {
		return answer
	}

	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n")
	b.WriteString(f.text.header)
	for i, c := range citations {
		line := f.text.file
		if c.Type == domain.DocumentTypeVideo {
			line = f.text.video
		}
		fmt.Fprintf(&b, line, i+1, c.SourceName, c.Category, c.Preview)
	}
	return b.String()
}

// preview shortens text to 100 characters, marking truncation with "...".
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
