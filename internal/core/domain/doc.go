// Package domain defines the core entities of the question-answering engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: normalised ingested content with loose metadata
//   - Chunk: a bounded text segment carrying scalar Metadata
//   - Value / Metadata: tagged scalar metadata values
//   - CorpusEntry: the registry record used to re-fetch content
//   - Turn / Answer / Citation: conversation state and results
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
