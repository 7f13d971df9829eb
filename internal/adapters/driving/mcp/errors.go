// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions against the indexed corpus.
package mcp

import "errors"

// ErrMissingConversationService is returned when no conversation is provided.
var ErrMissingConversationService = errors.New("mcp: conversation service is required")
