package domain

// RawDocument is the opaque input handed to a normaliser: a file's bytes
// or a fetched caption track.
type RawDocument struct {
	// URI is the original location (file name, blob key or caption URL).
	URI string

	// Format is the lower-case extension without the dot, e.g. "pdf" or "vtt".
	Format string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}
