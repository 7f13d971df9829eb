package driven

import "context"

// Blob namespaces used by the ingestor.
const (
	BlobDocuments = "documents"
	BlobVideos    = "youtube"
)

// BlobStore persists raw ingested bytes keyed by namespace and name.
type BlobStore interface {
	// Put stores data and returns the key it can be read back with.
	Put(ctx context.Context, namespace, name string, data []byte) (string, error)

	// Get returns the bytes stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
