package services

import (
	"fmt"
	"maps"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// buildDocuments turns a normalised source into the documents registered
// for entry. Multi-part sources produce one document per part with ids
// "<entry id>:<n>"; every part keeps the entry id under MetaDocID.
func buildDocuments(entry domain.CorpusEntry, result *driven.NormaliseResult) []domain.Document {
	base := entryMetadata(entry)

	if len(result.Parts) == 0 {
		content := strings.TrimSpace(result.Content)
		if content == "" {
			return nil
		}
		return []domain.Document{newDocument(entry, entry.ID, content, mergeMetadata(base, result.Metadata))}
	}

	docs := make([]domain.Document, 0, len(result.Parts))
	for i, part := range result.Parts {
		content := strings.TrimSpace(part.Content)
		if content == "" {
			continue
		}
		meta := mergeMetadata(base, result.Metadata)
		meta = mergeMetadata(meta, part.Metadata)
		docs = append(docs, newDocument(entry, fmt.Sprintf("%s:%d", entry.ID, i), content, meta))
	}
	return docs
}

func newDocument(entry domain.CorpusEntry, id, content string, meta map[string]any) domain.Document {
	return domain.Document{
		ID:         id,
		SourceName: entry.Name,
		Type:       entry.Type,
		Category:   entry.Category,
		Tags:       append([]string(nil), entry.Tags...),
		Content:    content,
		Metadata:   meta,
		CreatedAt:  entry.AddedAt,
	}
}

// entryMetadata returns the metadata every document of an entry carries.
func entryMetadata(entry domain.CorpusEntry) map[string]any {
	meta := map[string]any{
		domain.MetaSource:    entry.Name,
		domain.MetaDocID:     entry.ID,
		domain.MetaCategory:  entry.Category,
		domain.MetaTags:      entry.TagString(),
		domain.MetaDateAdded: entry.AddedAt.Format(domain.MetaDateLayout),
		domain.MetaType:      entry.Type.MetadataType(),
	}
	if entry.Type == domain.DocumentTypeVideo {
		meta[domain.MetaVideoID] = entry.VideoID
		meta[domain.MetaVideoURL] = entry.VideoURL
		meta[domain.MetaAuthor] = entry.Author
	}
	return meta
}

// mergeMetadata copies extra onto a clone of base without overriding
// existing keys.
func mergeMetadata(base, extra map[string]any) map[string]any {
	out := maps.Clone(base)
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
