package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversation answers questions. The server holds one conversation
	// for the lifetime of the connection.
	Conversation driving.ConversationService

	// Corpus lists registered documents.
	Corpus driving.CorpusService

	// Index rebuilds and describes the vector index.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	// Corpus and Index are optional; their tools report not implemented.
	return nil
}
