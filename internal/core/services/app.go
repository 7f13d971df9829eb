package services

import (
	"errors"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// AppConfig lists the adapters an App is assembled from. Embedder and LLM
// may be nil when their providers are not configured; operations that
// need them then fail with ErrEmbeddingUnavailable or ErrLLMUnavailable.
type AppConfig struct {
	Settings    domain.AppSettings
	ConfigStore driven.ConfigStore
	AIValidator driven.AIConfigValidator
	CorpusStore driven.CorpusStore
	Blobs       driven.BlobStore
	Normalisers driven.NormaliserRegistry
	Captions    driven.CaptionProvider
	Pipeline    driven.PostProcessorPipeline
	Embedder    driven.EmbeddingService
	LLM         driven.LLMService
	Index       driven.VectorIndex
	Prompts     driven.PromptStore
}

// App is the long-lived application context: the corpus registry and the
// vector index shared by every conversation.
type App struct {
	Settings *SettingsService
	Corpus   *CorpusService
	Ingest   *IngestService
	Index    *IndexService

	cfg AppConfig
}

// NewApp wires the services together.
func NewApp(cfg AppConfig) *App {
	corpus := NewCorpusService(cfg.CorpusStore)
	ingest := NewIngestService(cfg.Normalisers, cfg.Captions, cfg.Blobs, corpus, cfg.Settings.Captions)

	return &App{
		Settings: NewSettingsService(cfg.ConfigStore, cfg.AIValidator),
		Corpus:   corpus,
		Ingest:   ingest,
		Index:    NewIndexService(corpus, ingest, cfg.Pipeline, cfg.Embedder, cfg.Index, cfg.Settings.Vector),
		cfg:      cfg,
	}
}

// NewSession starts a conversation over the shared index.
func (a *App) NewSession() *Session {
	return NewSession(a.Index, a.cfg.LLM, a.cfg.Prompts, a.cfg.Settings.QA, a.cfg.Settings.LLM.Model)
}

// QASettings returns the question-answering settings the app was built with.
func (a *App) QASettings() domain.QASettings {
	return a.cfg.Settings.QA
}

// Close releases the index and provider clients.
func (a *App) Close() error {
	var errs []error
	if a.cfg.Index != nil {
		errs = append(errs, a.cfg.Index.Close())
	}
	if a.cfg.Embedder != nil {
		errs = append(errs, a.cfg.Embedder.Close())
	}
	if a.cfg.LLM != nil {
		errs = append(errs, a.cfg.LLM.Close())
	}
	return errors.Join(errs...)
}
