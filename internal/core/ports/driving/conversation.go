package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ConversationService answers questions within a single conversation.
// Calls must be serialised by the caller.
type ConversationService interface {
	// Ask answers a question and records the turn pair on success.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// History returns a copy of the recorded turns.
	History() []domain.Turn

	// Reset clears the conversation.
	Reset()
}
