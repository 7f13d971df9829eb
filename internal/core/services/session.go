package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.ConversationService = (*Session)(nil)

// Retriever returns the chunks most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

// passageSeparator separates retrieved passages in the context message.
const passageSeparator = "\n\n"

// Session is one conversation over the shared index. It is not meant to be
// shared between users; Ask calls are serialised.
type Session struct {
	mu    sync.Mutex
	turns []domain.Turn

	retriever Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	citations *CitationFormatter
	settings  domain.QASettings
	model     string
}

// NewSession creates an empty conversation. model may be empty to use the
// LLM service's default.
func NewSession(
	retriever Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.QASettings,
	model string,
) *Session {
	if settings.TopK <= 0 {
		settings.TopK = DefaultTopK
	}
	return &Session{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		citations: NewCitationFormatter(settings.Language),
		settings:  settings,
		model:     model,
	}
}

// Ask retrieves passages for the question, generates an answer and appends
// the (user, assistant) turn pair. On any failure the conversation is left
// unchanged. The stored assistant turn holds the answer without the
// sources block.
func (s *Session) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.window()
	query := s.standaloneQuery(ctx, history, question)

	results, err := s.retriever.Retrieve(ctx, query, s.settings.TopK)
	if err != nil {
		return nil, err
	}
	logger.Debug("retrieved %d passages for %q", len(results), query)

	system, err := s.systemMessage(results)
	if err != nil {
		return nil, err
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	for _, t := range history {
		messages = append(messages, driven.ChatMessage{Role: string(t.Role), Content: t.Text})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: question})

	raw, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Model:       s.model,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	raw = strings.TrimSpace(raw)

	s.turns = append(s.turns,
		domain.Turn{Role: domain.RoleUser, Text: question},
		domain.Turn{Role: domain.RoleAssistant, Text: raw},
	)

	citations := s.citations.Collect(results)
	return &domain.Answer{
		Text:      s.citations.Format(raw, citations),
		Raw:       raw,
		Citations: citations,
		Query:     query,
	}, nil
}

// History returns a copy of the recorded turns.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Turn(nil), s.turns...)
}

// Reset clears the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// window returns the turns sent with the next question.
func (s *Session) window() []domain.Turn {
	if s.settings.MemoryTurns <= 0 || len(s.turns) <= 2*s.settings.MemoryTurns {
		return s.turns
	}
	return s.turns[len(s.turns)-2*s.settings.MemoryTurns:]
}

// standaloneQuery rewrites a follow-up question using the history when
// condensation is enabled. Failures fall back to the question itself.
func (s *Session) standaloneQuery(ctx context.Context, history []domain.Turn, question string) string {
	if !s.settings.CondenseQuestion || len(history) == 0 {
		return question
	}

	tmpl, err := s.prompts.Load(driven.PromptCondenseQuestion)
	if err != nil {
		logger.Warn("condense prompt unavailable: %v", err)
		return question
	}

	var b strings.Builder
	for _, t := range history {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
	}

	var prompt string
	if strings.Count(tmpl, "%s") >= 2 {
		prompt = strings.Replace(tmpl, "%s", strings.TrimSpace(b.String()), 1)
		prompt = strings.Replace(prompt, "%s", question, 1)
	} else {
		prompt = tmpl + "\n\n" + b.String() + "\n" + question
	}

	out, err := s.llm.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions{
		Model:       s.model,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("condense question failed, using original: %v", err)
		return question
	}

	if out = strings.TrimSpace(out); out != "" {
		return out
	}
	return question
}

// systemMessage combines the system instruction with the retrieved passages.
func (s *Session) systemMessage(results []domain.RetrievedChunk) (string, error) {
	system, err := s.prompts.Load(driven.PromptQASystem)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", driven.PromptQASystem, err)
	}
	contextTmpl, err := s.prompts.Load(driven.PromptQAContext)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", driven.PromptQAContext, err)
	}

	passages := make([]string, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Text)
	}
	joined := strings.Join(passages, passageSeparator)

	var rendered string
	if strings.Contains(contextTmpl, "%s") {
		rendered = strings.Replace(contextTmpl, "%s", joined, 1)
	} else {
		rendered = contextTmpl + "\n\n" + joined
	}

	return strings.TrimSpace(system) + "\n\n" + strings.TrimSpace(rendered), nil
}
