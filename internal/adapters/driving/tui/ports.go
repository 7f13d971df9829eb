// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Conversation answers questions. Required.
	Conversation driving.ConversationService

	// Corpus lists registered documents and videos.
	Corpus driving.CorpusService

	// Index reports the active index status.
	Index driving.IndexService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	return nil
}
