package chat

import "errors"

// ErrNoConversation indicates that no conversation service was provided.
var ErrNoConversation = errors.New("conversation service is required")
