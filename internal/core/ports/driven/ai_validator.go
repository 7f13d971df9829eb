package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator checks that provider settings reach a live service.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured LLM provider.
	ValidateLLM(settings *domain.LLMSettings) error
}
