// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - NormaliserRegistry: Extracts plain text by format
//   - BlobStore: Raw file and transcript persistence
//   - CorpusStore: Corpus registry persistence
//   - ConfigStore: Application configuration
//   - VectorIndex: Vector storage and similarity search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, index rebuilds and questions are disabled.
//   - LLMService: Without it, questions are disabled.
//   - CaptionProvider: Without it, video ingestion is disabled.
//   - PromptStore: Without it, embedded default prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
