package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates no extractor handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates text could not be extracted, or was empty.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidVideoURL indicates no video id could be parsed from a URL.
	ErrInvalidVideoURL = errors.New("invalid video url")

	// ErrNoCaptionsAvailable indicates a video has no usable caption track.
	ErrNoCaptionsAvailable = errors.New("no captions available")

	// Indexing and answering Errors.

	// ErrEmbeddingFailed indicates the embedding provider rejected or failed a request.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the generation provider failed to answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexNotReady indicates no vector index has been built yet.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrEmptyCorpus indicates a rebuild was requested with nothing to index.
	ErrEmptyCorpus = errors.New("corpus is empty")

	// ErrDimensionMismatch indicates a query vector does not match the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Provider Errors.

	// ErrProviderUnavailable indicates a provider call timed out or kept failing.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ItemError ties a failure to the item that caused it, so batch callers
// can report which source to retry.
type ItemError struct {
	// Item is the file name or URL that failed.
	Item string

	// Err is the underlying failure, usually wrapping a domain sentinel.
	Err error
}

// Error implements error.
func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

// Unwrap returns the underlying error.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// Kind returns the short name of the taxonomy sentinel wrapped by err,
// or "error" when none matches.
func Kind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "error"
}

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrUnsupportedFormat, "unsupported_format"},
	{ErrExtractionFailed, "extraction_failed"},
	{ErrInvalidVideoURL, "invalid_video_url"},
	{ErrNoCaptionsAvailable, "no_captions_available"},
	{ErrEmbeddingFailed, "embedding_failed"},
	{ErrGenerationFailed, "generation_failed"},
	{ErrIndexNotReady, "index_not_ready"},
	{ErrProviderUnavailable, "provider_unavailable"},
	{ErrEmptyCorpus, "empty_corpus"},
	{ErrNotFound, "not_found"},
	{ErrInvalidInput, "invalid_input"},
	{ErrNotImplemented, "not_implemented"},
}
