package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_Unconfigured(t *testing.T) {
	validator := NewConfigValidator()

	// Nothing to validate.
	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_PingsProvider(t *testing.T) {
	validator := NewConfigValidator()

	up := ollamaServer(t, http.StatusOK)
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))

	down := ollamaServer(t, http.StatusBadGateway)
	assert.Error(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL}))
}
