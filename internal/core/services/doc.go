// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters):
//
//   - IngestService turns files and video URLs into registered documents.
//   - IndexService rebuilds the vector index and serves retrieval.
//   - Session holds one conversation and answers questions with citations.
//   - App bundles the long-lived services shared by every session.
//
// Services are pure Go with no CGO or external dependencies.
package services
