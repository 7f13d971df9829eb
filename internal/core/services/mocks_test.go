package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

const mockDims = 64

// mockEmbeddingService implements driven.EmbeddingService with a bag of
// hashed words, so texts sharing words land close together.
type mockEmbeddingService struct {
	batchErr   error
	embedErr   error
	failOnCall int32
	calls      atomic.Int32
	dims       int

	// entered is closed on the first batch call, which then waits for
	// release to be closed.
	entered   chan struct{}
	release   chan struct{}
	enterOnce sync.Once
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	dims := m.dims
	if dims == 0 {
		dims = mockDims
	}
	v := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		v[h.Sum32()%uint32(dims)]++
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	call := m.calls.Add(1)
	if m.entered != nil {
		m.enterOnce.Do(func() { close(m.entered) })
		<-m.release
	}
	if m.batchErr != nil && (m.failOnCall == 0 || call == m.failOnCall) {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return mockDims }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService and records every request.
type mockLLMService struct {
	mu       sync.Mutex
	replies  []string
	err      error
	errOn    func(messages []driven.ChatMessage) error
	requests [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, append([]driven.ChatMessage(nil), messages...))
	m.options = append(m.options, opts)
	if m.errOn != nil {
		if err := m.errOn(messages); err != nil {
			return "", err
		}
	}
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "answer", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptQASystem:         "You are a tax assistant.",
		driven.PromptQAContext:        "Documents:\n%s",
		driven.PromptCondenseQuestion: "History:\n%s\nFollow-up: %s\nStandalone question:",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockCaptionProvider implements driven.CaptionProvider.
type mockCaptionProvider struct {
	tracks   []domain.CaptionTrack
	listErr  error
	captions map[string][]byte
	fetchErr error
	info     *domain.VideoInfo
	infoErr  error
	fetched  []string
}

func (m *mockCaptionProvider) ListTracks(_ context.Context, _ string) ([]domain.CaptionTrack, error) {
	return m.tracks, m.listErr
}

func (m *mockCaptionProvider) Fetch(_ context.Context, url string) ([]byte, error) {
	m.fetched = append(m.fetched, url)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.captions[url], nil
}

func (m *mockCaptionProvider) VideoInfo(_ context.Context, _ string) (*domain.VideoInfo, error) {
	return m.info, m.infoErr
}

// stubRetriever implements Retriever with canned results.
type stubRetriever struct {
	results []domain.RetrievedChunk
	err     error
	queries []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.results) {
		return s.results[:k], nil
	}
	return s.results, nil
}
