package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockConversation is a mock implementation of driving.ConversationService.
type mockConversation struct {
	answer  *domain.Answer
	err     error
	asked   []string
	resets  int
	history []domain.Turn
}

func (m *mockConversation) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

func (m *mockConversation) History() []domain.Turn {
	return m.history
}

func (m *mockConversation) Reset() {
	m.resets++
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	entries []domain.CorpusEntry
	entry   *domain.CorpusEntry
	err     error
}

func (m *mockCorpusService) List(_ context.Context) ([]domain.CorpusEntry, error) {
	return m.entries, m.err
}

func (m *mockCorpusService) Get(_ context.Context, _ string) (*domain.CorpusEntry, error) {
	return m.entry, m.err
}

func (m *mockCorpusService) Remove(_ context.Context, _ string) error {
	return domain.ErrNotImplemented
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	result *domain.RebuildResult
	info   *domain.IndexInfo
	err    error
}

func (m *mockIndexService) Rebuild(_ context.Context) (*domain.RebuildResult, error) {
	return m.result, m.err
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexInfo, error) {
	return m.info, m.err
}

func (m *mockIndexService) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return nil, m.err
}
