package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Language is the language answers and citations are rendered in.
type Language string

// Supported answer languages.
const (
	LanguageTraditionalChinese Language = "zh-TW"
	LanguageEnglish            Language = "en"
)

// IsValid returns true if the language is supported.
func (l Language) IsValid() bool {
	return l == LanguageTraditionalChinese || l == LanguageEnglish
}

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}

// QASettings controls the question-answering engine.
type QASettings struct {
	// Language is the answer and citation language.
	Language Language

	// TopK is the number of chunks retrieved per question.
	TopK int

	// Temperature is the sampling temperature for generation.
	Temperature float64

	// MemoryTurns caps how many prior (user, assistant) pairs are sent with
	// each question. Zero sends the full history.
	MemoryTurns int

	// CondenseQuestion rewrites follow-up questions into standalone
	// retrieval queries using the conversation history.
	CondenseQuestion bool
}

// CaptionSettings controls caption track selection for videos.
type CaptionSettings struct {
	// PrimaryLanguage is the preferred language prefix, e.g. "zh".
	PrimaryLanguage string

	// SecondaryLanguage is the fallback language prefix, e.g. "en".
	SecondaryLanguage string
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// VectorBackend selects where vector records are stored.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMilvus stores vectors in a Milvus server.
	VectorBackendMilvus VectorBackend = "milvus"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendSQLite || b == VectorBackendMilvus
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	// Backend is the storage backend.
	Backend VectorBackend

	// BatchSize is the number of chunks per embedding request.
	BatchSize int

	// Workers is the number of concurrent embedding requests.
	Workers int

	// Milvus connection settings, used when Backend is milvus.
	MilvusAddress  string
	MilvusUsername string
	MilvusPassword string
	MilvusDatabase string
}

// ProviderSettings bounds calls to remote AI providers.
type ProviderSettings struct {
	// Timeout applies to each individual provider call.
	Timeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	QA        QASettings
	Captions  CaptionSettings
	Chunking  ChunkingSettings
	Vector    VectorSettings
	Provider  ProviderSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		QA: QASettings{
			Language:    LanguageTraditionalChinese,
			TopK:        6,
			Temperature: 0.7,
		},
		Captions: CaptionSettings{
			PrimaryLanguage:   "zh",
			SecondaryLanguage: "en",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Vector: VectorSettings{
			Backend:        VectorBackendSQLite,
			BatchSize:      64,
			Workers:        4,
			MilvusAddress:  "localhost:19530",
			MilvusDatabase: "default",
		},
		Provider: ProviderSettings{
			Timeout: 60 * time.Second,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo-16k",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
