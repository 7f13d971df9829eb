package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var testAddedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testEntries() []domain.CorpusEntry {
	return []domain.CorpusEntry{
		{
			ID:       "doc-1",
			Name:     "tax-guide.pdf",
			Type:     domain.DocumentTypeFile,
			Format:   "pdf",
			Category: "tax",
			Tags:     []string{"2024", "deductions"},
			Path:     "documents/doc-1.pdf",
			AddedAt:  testAddedAt,
		},
		{
			ID:       "doc-2",
			Name:     "Filing walkthrough",
			Type:     domain.DocumentTypeVideo,
			Format:   "youtube",
			Category: "howto",
			Path:     "videos/doc-2.txt",
			AddedAt:  testAddedAt,
			VideoID:  "abc123",
			VideoURL: "https://youtu.be/abc123",
			Author:   "Tax Office",
		},
	}
}

type mockCorpusService struct {
	entries []domain.CorpusEntry
	err     error
}

func (m *mockCorpusService) List(_ context.Context) ([]domain.CorpusEntry, error) {
	return m.entries, m.err
}

func (m *mockCorpusService) Get(_ context.Context, id string) (*domain.CorpusEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorpusService) Remove(_ context.Context, _ string) error {
	return domain.ErrNotImplemented
}

type mockIngestService struct {
	requests []domain.IngestRequest
	failURL  string
}

func (m *mockIngestService) IngestFile(_ context.Context, src domain.FileSource) ([]domain.Document, error) {
	return []domain.Document{{ID: "doc-" + src.Name, Content: string(src.Content)}}, nil
}

func (m *mockIngestService) IngestVideo(_ context.Context, src domain.VideoSource) ([]domain.Document, error) {
	if src.URL == m.failURL {
		return nil, &domain.ItemError{Item: src.URL, Err: domain.ErrNoCaptionsAvailable}
	}
	return []domain.Document{{ID: "video", Content: "transcript"}}, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestReport {
	m.requests = append(m.requests, reqs...)
	reports := make([]domain.IngestReport, 0, len(reqs))
	for _, req := range reqs {
		report := domain.IngestReport{Item: req.Label()}
		if req.File != nil {
			report.Documents, report.Err = m.IngestFile(ctx, *req.File)
		} else {
			report.Documents, report.Err = m.IngestVideo(ctx, *req.Video)
		}
		reports = append(reports, report)
	}
	return reports
}

func (m *mockIngestService) SupportedFormats() []string {
	return []string{"pdf", "docx", "doc", "txt", "md", "csv"}
}

type mockIndexService struct {
	result   *domain.RebuildResult
	info     *domain.IndexInfo
	err      error
	rebuilds int
}

func (m *mockIndexService) Rebuild(_ context.Context) (*domain.RebuildResult, error) {
	m.rebuilds++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

func (m *mockIndexService) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return nil, m.err
}

type mockConversation struct {
	answer  *domain.Answer
	err     error
	asked   []string
	history []domain.Turn
}

func (m *mockConversation) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.err != nil {
		return nil, m.err
	}
	m.history = append(m.history,
		domain.Turn{Role: domain.RoleUser, Text: question},
		domain.Turn{Role: domain.RoleAssistant, Text: m.answer.Raw})
	return m.answer, nil
}

func (m *mockConversation) History() []domain.Turn {
	return append([]domain.Turn(nil), m.history...)
}

func (m *mockConversation) Reset() {
	m.history = nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLanguage(lang domain.Language) error {
	if !lang.IsValid() {
		return domain.ErrInvalidInput
	}
	m.settings.QA.Language = lang
	return nil
}

func (m *mockSettingsService) SetMemoryTurns(turns int) error {
	if turns < 0 {
		return domain.ErrInvalidInput
	}
	m.settings.QA.MemoryTurns = turns
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return nil
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	corpus       *mockCorpusService
	ingest       *mockIngestService
	index        *mockIndexService
	settings     *mockSettingsService
	conversation *mockConversation
}

// setupTestServices installs mock services and returns a cleanup func that
// restores the previous ones.
func setupTestServices() func() {
	cleanup, _ := setupTestServicesWithMocks()
	return cleanup
}

func setupTestServicesWithMocks() (func(), *testServices) {
	prev := Services{
		Corpus:          corpusService,
		Ingest:          ingestService,
		Index:           indexService,
		Settings:        settingsService,
		NewConversation: newConversation,
		WatchPrompts:    watchPrompts,
	}

	mocks := &testServices{
		corpus: &mockCorpusService{entries: testEntries()},
		ingest: &mockIngestService{},
		index: &mockIndexService{
			result: &domain.RebuildResult{
				Info:      domain.IndexInfo{Records: 12, Dimensions: 1536, Model: "text-embedding-3-small", Backend: "sqlite", BuiltAt: testAddedAt},
				Documents: 2,
				Chunks:    12,
			},
			info: &domain.IndexInfo{Records: 12, Dimensions: 1536, Model: "text-embedding-3-small", Backend: "sqlite", BuiltAt: testAddedAt},
		},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
		conversation: &mockConversation{
			answer: &domain.Answer{
				Text: "Deductions are listed in chapter 3.\n\n參考來源:\n1. tax-guide.pdf",
				Raw:  "Deductions are listed in chapter 3.",
				Citations: []domain.Citation{
					{DocumentID: "doc-1", SourceName: "tax-guide.pdf", Type: domain.DocumentTypeFile, Score: 0.91},
				},
				Query: "deductions",
			},
		},
	}

	SetServices(Services{
		Corpus:          mocks.corpus,
		Ingest:          mocks.ingest,
		Index:           mocks.index,
		Settings:        mocks.settings,
		NewConversation: func() driving.ConversationService { return mocks.conversation },
	})

	return func() { SetServices(prev) }, mocks
}

var errBoom = errors.New("boom")
