package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the corpus registry.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpus",
		Name:        "corpus",
		Description: "All ingested documents and videos",
		MIMEType:    "application/json",
	}, s.handleCorpusResource)

	// Template for a single registry entry.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "corpus/{entryId}",
		Name:        "corpus-entry",
		Description: "A single ingested document or video",
		MIMEType:    "application/json",
	}, s.handleCorpusEntryResource)

	// Static resource for the active index.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Status of the active vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleCorpusResource returns every registered entry.
func (s *Server) handleCorpusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return jsonResult(req.Params.URI, []domain.CorpusEntry{})
	}

	entries, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpus: %w", err)
	}
	if entries == nil {
		entries = []domain.CorpusEntry{}
	}
	return jsonResult(req.Params.URI, entries)
}

// handleCorpusEntryResource returns one registered entry.
func (s *Server) handleCorpusEntryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract entryId from URI: docqa://corpus/{entryId}
	id := extractEntryID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry, err := s.ports.Corpus.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting corpus entry: %w", err)
	}
	return jsonResult(req.Params.URI, entry)
}

// handleIndexResource returns the active index description.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type indexStatus struct {
		Ready      bool   `json:"ready"`
		Records    int    `json:"records,omitempty"`
		Dimensions int    `json:"dimensions,omitempty"`
		Model      string `json:"model,omitempty"`
		Backend    string `json:"backend,omitempty"`
		BuiltAt    string `json:"built_at,omitempty"`
	}

	if s.ports.Index == nil {
		return jsonResult(req.Params.URI, indexStatus{})
	}

	info, err := s.ports.Index.Status(ctx)
	if errors.Is(err, domain.ErrIndexNotReady) {
		return jsonResult(req.Params.URI, indexStatus{})
	}
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}

	return jsonResult(req.Params.URI, indexStatus{
		Ready:      true,
		Records:    info.Records,
		Dimensions: info.Dimensions,
		Model:      info.Model,
		Backend:    info.Backend,
		BuiltAt:    info.BuiltAt.Format(domain.MetaDateLayout),
	})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEntryID extracts the entry ID from a URI like docqa://corpus/{entryId}.
func extractEntryID(uri string) string {
	const prefix = uriScheme + "corpus/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
