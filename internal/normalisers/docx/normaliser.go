// Package docx extracts text from Word documents (Office Open XML).
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// errLegacyDoc is returned for binary .doc files, which are not zip archives.
var errLegacyDoc = errors.New("legacy binary .doc is not supported, save it as .docx")

// Normaliser handles Word documents.
type Normaliser struct{}

// New creates a new Word normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFormats returns the formats this normaliser handles.
// Legacy .doc files are accepted and fail extraction unless they are
// actually Office Open XML archives with the wrong extension.
func (n *Normaliser) SupportedFormats() []string {
	return []string{"docx", "doc"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text from word/document.xml. Paragraphs,
// including those inside tables, are separated by blank lines.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		if raw.Format == "doc" {
			return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, errLegacyDoc)
		}
		return nil, fmt.Errorf("%w: open archive: %w", domain.ErrExtractionFailed, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	paragraphs, err := parseParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document.xml: %w", domain.ErrExtractionFailed, err)
	}

	meta := map[string]any{
		"format":     "docx",
		"paragraphs": len(paragraphs),
	}

	title := ""
	if core, err := readPart(reader, "docProps/core.xml"); err == nil {
		props := parseCoreProps(core)
		title = props.Title
		if props.Creator != "" {
			meta["author"] = props.Creator
		}
	}
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Content:  strings.Join(paragraphs, "\n\n"),
		Title:    title,
		Metadata: meta,
	}, nil
}

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// parseParagraphs walks the XML token stream collecting w:t text per w:p.
// Tabs and breaks become whitespace. Empty paragraphs are skipped.
func parseParagraphs(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}

// coreProps is the subset of docProps/core.xml we read.
type coreProps struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

func parseCoreProps(data []byte) coreProps {
	var props coreProps
	if err := xml.Unmarshal(data, &props); err != nil {
		return coreProps{}
	}
	props.Title = strings.TrimSpace(props.Title)
	props.Creator = strings.TrimSpace(props.Creator)
	return props
}

// titleFromURI derives a readable title from a file name.
func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
