package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyQALanguage        = "qa.language"
	keyQATopK            = "qa.top_k"
	keyQATemperature     = "qa.temperature"
	keyQAMemoryTurns     = "qa.memory_turns"
	keyQACondense        = "qa.condense_question"
	keyCaptionPrimary    = "captions.primary_language"
	keyCaptionSecondary  = "captions.secondary_language"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyVectorBackend     = "vector.backend"
	keyVectorBatchSize   = "vector.batch_size"
	keyVectorWorkers     = "vector.workers"
	keyMilvusAddress     = "vector.milvus_address"
	keyMilvusUsername    = "vector.milvus_username"
	keyMilvusPassword    = "vector.milvus_password"
	keyMilvusDatabase    = "vector.milvus_database"
	keyProviderTimeout   = "provider.timeout_seconds"
	envOpenAIAPIKey      = "OPENAI_API_KEY"
	envAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) string
}

// NewSettingsService creates a new settings service.
// Missing API keys are filled from OPENAI_API_KEY and ANTHROPIC_API_KEY.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		QA: domain.QASettings{
			Language:         s.getLanguage(defaults.QA.Language),
			TopK:             s.getInt(keyQATopK, defaults.QA.TopK),
			Temperature:      s.getFloat(keyQATemperature, defaults.QA.Temperature),
			MemoryTurns:      s.getInt(keyQAMemoryTurns, defaults.QA.MemoryTurns),
			CondenseQuestion: s.getBool(keyQACondense, defaults.QA.CondenseQuestion),
		},
		Captions: domain.CaptionSettings{
			PrimaryLanguage:   s.getString(keyCaptionPrimary, defaults.Captions.PrimaryLanguage),
			SecondaryLanguage: s.getString(keyCaptionSecondary, defaults.Captions.SecondaryLanguage),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Vector: domain.VectorSettings{
			Backend:        s.getBackend(defaults.Vector.Backend),
			BatchSize:      s.getInt(keyVectorBatchSize, defaults.Vector.BatchSize),
			Workers:        s.getInt(keyVectorWorkers, defaults.Vector.Workers),
			MilvusAddress:  s.getString(keyMilvusAddress, defaults.Vector.MilvusAddress),
			MilvusUsername: s.configStore.GetString(keyMilvusUsername),
			MilvusPassword: s.configStore.GetString(keyMilvusPassword),
			MilvusDatabase: s.getString(keyMilvusDatabase, defaults.Vector.MilvusDatabase),
		},
		Provider: domain.ProviderSettings{
			Timeout: s.getSeconds(keyProviderTimeout, defaults.Provider.Timeout),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings. API keys are only written when set,
// so keys taken from the environment never land in the config file unless
// they were stored there before.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyQALanguage, settings.QA.Language.String()},
		{keyQATopK, settings.QA.TopK},
		{keyQATemperature, settings.QA.Temperature},
		{keyQAMemoryTurns, settings.QA.MemoryTurns},
		{keyQACondense, settings.QA.CondenseQuestion},
		{keyCaptionPrimary, settings.Captions.PrimaryLanguage},
		{keyCaptionSecondary, settings.Captions.SecondaryLanguage},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyVectorBackend, settings.Vector.Backend.String()},
		{keyVectorBatchSize, settings.Vector.BatchSize},
		{keyVectorWorkers, settings.Vector.Workers},
		{keyMilvusAddress, settings.Vector.MilvusAddress},
		{keyMilvusUsername, settings.Vector.MilvusUsername},
		{keyMilvusDatabase, settings.Vector.MilvusDatabase},
		{keyProviderTimeout, int(settings.Provider.Timeout / time.Second)},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:    settings.Embedding.APIKey,
		keyLLMAPIKey:      settings.LLM.APIKey,
		keyMilvusPassword: settings.Vector.MilvusPassword,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetLanguage sets the answer and citation language.
func (s *SettingsService) SetLanguage(lang domain.Language) error {
	if !lang.IsValid() {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidInput, lang)
	}
	return s.configStore.Set(keyQALanguage, lang.String())
}

// SetMemoryTurns caps the history sent with each question.
func (s *SettingsService) SetMemoryTurns(turns int) error {
	if turns < 0 {
		return fmt.Errorf("%w: memory turns must not be negative", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyQAMemoryTurns, turns)
}

// Validate checks that both providers are configured and the remaining
// settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Chunking.Overlap >= settings.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			settings.Chunking.Overlap, settings.Chunking.Size)
	}
	if settings.QA.TopK <= 0 {
		return fmt.Errorf("qa.top_k must be positive, got %d", settings.QA.TopK)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.lookupEnv(envOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.lookupEnv(envAnthropicAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.configStore.GetInt(key)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getLanguage(defaultVal domain.Language) domain.Language {
	lang := domain.Language(s.configStore.GetString(keyQALanguage))
	if !lang.IsValid() {
		return defaultVal
	}
	return lang
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
