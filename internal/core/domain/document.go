package domain

import "time"

// DocumentType identifies what kind of source produced a document.
type DocumentType string

const (
	// DocumentTypeFile is an uploaded file (pdf, docx, txt, ...).
	DocumentTypeFile DocumentType = "file"

	// DocumentTypeVideo is a video transcript built from captions.
	DocumentTypeVideo DocumentType = "video"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeFile || t == DocumentTypeVideo
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// MetadataType returns the value stored under the "type" metadata key.
func (t DocumentType) MetadataType() string {
	if t == DocumentTypeVideo {
		return "youtube"
	}
	return "document"
}

// Metadata keys attached to every ingested document.
const (
	MetaSource     = "source"
	MetaDocID      = "doc_id"
	MetaCategory   = "category"
	MetaTags       = "tags"
	MetaDateAdded  = "date_added"
	MetaType       = "type"
	MetaVideoID    = "youtube_id"
	MetaVideoURL   = "youtube_url"
	MetaAuthor     = "author"
	MetaDateLayout = "2006-01-02 15:04:05"
)

// Document is the uniform representation of any ingested content.
// It is the canonical form after normalisation and before chunking.
type Document struct {
	// ID is assigned at ingestion and stable for the content's lifetime.
	ID string

	// SourceName is the human-readable origin (filename or video title).
	SourceName string

	// Type drives loader selection and default metadata.
	Type DocumentType

	// Category is free-text classification set at ingestion time.
	Category string

	// Tags is the set of user-supplied tags.
	Tags []string

	// Content is the full extracted text.
	Content string

	// Metadata holds loosely-typed attributes collected during ingestion.
	// Values are only guaranteed scalar once sanitised onto a Chunk.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a bounded-length text segment derived from a Document.
type Chunk struct {
	// ID is deterministic for a given document and position.
	ID string

	// DocumentID links back to the parent Document.
	DocumentID string

	// Content is a contiguous substring of the parent's content.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Metadata holds sanitised scalar metadata copied from the parent.
	Metadata Metadata
}

// VectorRecord is what the vector index persists for a chunk.
type VectorRecord struct {
	ChunkID    string
	DocumentID string
	Text       string
	Embedding  []float32
	Metadata   Metadata
}

// RetrievedChunk is a single retrieval hit ordered by score.
type RetrievedChunk struct {
	ChunkID    string
	DocumentID string
	Text       string
	Metadata   Metadata
	Score      float64
}

// IndexInfo describes the currently active vector index.
type IndexInfo struct {
	Records    int
	Dimensions int
	Model      string
	Backend    string
	BuiltAt    time.Time
}
