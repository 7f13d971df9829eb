package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockConversationService is a mock implementation of driving.ConversationService.
type MockConversationService struct {
	Answer *domain.Answer
	Err    error
	turns  []domain.Turn
}

func (m *MockConversationService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.turns = append(m.turns,
		domain.Turn{Role: domain.RoleUser, Text: question},
		domain.Turn{Role: domain.RoleAssistant, Text: m.Answer.Raw},
	)
	return m.Answer, nil
}

func (m *MockConversationService) History() []domain.Turn {
	return m.turns
}

func (m *MockConversationService) Reset() {
	m.turns = nil
}

// MockCorpusService is a mock implementation of driving.CorpusService.
type MockCorpusService struct {
	Entries []domain.CorpusEntry
	Err     error
}

func (m *MockCorpusService) List(_ context.Context) ([]domain.CorpusEntry, error) {
	return m.Entries, m.Err
}

func (m *MockCorpusService) Get(_ context.Context, id string) (*domain.CorpusEntry, error) {
	for i := range m.Entries {
		if m.Entries[i].ID == id {
			return &m.Entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCorpusService) Remove(_ context.Context, _ string) error {
	return m.Err
}
