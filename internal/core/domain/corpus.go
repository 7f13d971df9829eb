package domain

import (
	"strings"
	"time"
)

// CorpusEntry is the registry record for one ingested item.
// It carries enough to re-fetch the content on an index rebuild.
type CorpusEntry struct {
	// ID is the document id.
	ID string `json:"id" yaml:"id"`

	// Name is the filename or video title.
	Name string `json:"name" yaml:"name"`

	// Type distinguishes files from videos.
	Type DocumentType `json:"type" yaml:"type"`

	// Format is the file extension without the dot, or "youtube".
	Format string `json:"format" yaml:"format"`

	// Category is the user-supplied category.
	Category string `json:"category" yaml:"category"`

	// Tags is the user-supplied tag set.
	Tags []string `json:"tags" yaml:"tags"`

	// Path is the blob key holding the raw file or transcript.
	Path string `json:"path" yaml:"path"`

	// AddedAt is the ingestion timestamp.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`

	// Video-only fields.
	VideoID      string `json:"video_id,omitempty" yaml:"video_id,omitempty"`
	VideoURL     string `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	Author       string `json:"author,omitempty" yaml:"author,omitempty"`
}

// TagString returns the tags joined by a comma.
func (e CorpusEntry) TagString() string {
	return strings.Join(e.Tags, ",")
}

// Classification is the user-supplied category and tag set for an item.
type Classification struct {
	Category string
	Tags     []string
}

// NormaliseTags trims, drops empties and de-duplicates tags preserving order.
func NormaliseTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		for _, part := range strings.Split(t, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

// FileSource is an uploaded file awaiting ingestion.
type FileSource struct {
	// Name is the original filename including extension.
	Name string

	// Content is the raw file bytes.
	Content []byte

	Classification
}

// VideoSource is a video URL awaiting ingestion.
type VideoSource struct {
	URL string

	Classification
}

// IngestRequest is one item of a batch ingestion. Exactly one of File or
// Video is set.
type IngestRequest struct {
	File  *FileSource
	Video *VideoSource
}

// Label returns the name used when reporting on this request.
func (r IngestRequest) Label() string {
	switch {
	case r.File != nil:
		return r.File.Name
	case r.Video != nil:
		return r.Video.URL
	default:
		return "<empty>"
	}
}

// IngestReport is the per-item outcome of a batch ingestion.
type IngestReport struct {
	Item      string
	Documents []Document
	Err       error
}

// OK reports whether the item was ingested.
func (r IngestReport) OK() bool {
	return r.Err == nil
}

// RebuildResult summarises an index rebuild.
type RebuildResult struct {
	Info      IndexInfo
	Documents int
	Chunks    int
	Skipped   []ItemError
}
