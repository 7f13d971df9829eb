package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Reset    bool   `json:"reset,omitempty" jsonschema:"start a new conversation before asking"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	Query     string            `json:"query"`
}

// ListCorpusInput is the input schema for the list_corpus tool.
type ListCorpusInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list entries in this category"`
}

// ListCorpusOutput is the output schema for the list_corpus tool.
type ListCorpusOutput struct {
	Entries []EntryOutput `json:"entries"`
	Count   int           `json:"count"`
}

// EntryOutput is one registered document or video.
type EntryOutput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	AddedAt  string   `json:"added_at"`
	VideoURL string   `json:"video_url,omitempty"`
	Author   string   `json:"author,omitempty"`
}

// RebuildIndexInput is the input schema for the rebuild_index tool.
type RebuildIndexInput struct{}

// RebuildIndexOutput is the output schema for the rebuild_index tool.
type RebuildIndexOutput struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Model     string        `json:"model"`
	Backend   string        `json:"backend"`
	BuiltAt   string        `json:"built_at"`
	Skipped   []SkippedItem `json:"skipped,omitempty"`
}

// SkippedItem is a corpus entry left out of a rebuild.
type SkippedItem struct {
	Item  string `json:"item"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents and videos, with cited sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_corpus",
		Description: "List ingested documents and videos",
	}, s.handleListCorpus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rebuild_index",
		Description: "Re-embed the whole corpus and replace the vector index",
	}, s.handleRebuildIndex)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Reset {
		s.ports.Conversation.Reset()
	}

	answer, err := s.ports.Conversation.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Query:     answer.Query,
	}, nil
}

// handleListCorpus handles the list_corpus tool invocation.
func (s *Server) handleListCorpus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListCorpusInput,
) (*mcp.CallToolResult, ListCorpusOutput, error) {
	if s.ports.Corpus == nil {
		return nil, ListCorpusOutput{}, domain.ErrNotImplemented
	}

	entries, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, ListCorpusOutput{}, err
	}

	output := ListCorpusOutput{Entries: make([]EntryOutput, 0, len(entries))}
	for i := range entries {
		e := &entries[i]
		if input.Category != "" && e.Category != input.Category {
			continue
		}
		output.Entries = append(output.Entries, EntryOutput{
			ID:       e.ID,
			Name:     e.Name,
			Type:     e.Format,
			Category: e.Category,
			Tags:     e.Tags,
			AddedAt:  e.AddedAt.Format(domain.MetaDateLayout),
			VideoURL: e.VideoURL,
			Author:   e.Author,
		})
	}
	output.Count = len(output.Entries)

	return nil, output, nil
}

// handleRebuildIndex handles the rebuild_index tool invocation.
func (s *Server) handleRebuildIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RebuildIndexInput,
) (*mcp.CallToolResult, RebuildIndexOutput, error) {
	if s.ports.Index == nil {
		return nil, RebuildIndexOutput{}, domain.ErrNotImplemented
	}

	result, err := s.ports.Index.Rebuild(ctx)
	if err != nil {
		return nil, RebuildIndexOutput{}, err
	}

	output := RebuildIndexOutput{
		Documents: result.Documents,
		Chunks:    result.Chunks,
		Model:     result.Info.Model,
		Backend:   result.Info.Backend,
		BuiltAt:   result.Info.BuiltAt.Format(domain.MetaDateLayout),
	}
	for _, skipped := range result.Skipped {
		output.Skipped = append(output.Skipped, SkippedItem{
			Item:  skipped.Item,
			Kind:  domain.Kind(skipped.Err),
			Error: skipped.Err.Error(),
		})
	}

	return nil, output, nil
}
