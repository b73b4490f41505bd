package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "gpt-4o-mini", config.GetModel(TierLite))
	assert.Equal(t, "gpt-4o", config.GetModel(TierStandard))
	assert.Equal(t, "gpt-4o-2024-08-06", config.GetModel(TierAdvanced))
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, ProviderGemini, ConfigFor(ProviderGemini).Provider)
	assert.Equal(t, "gemini-2.5-pro", ConfigFor(ProviderGemini).GetModel(TierAdvanced))
	assert.Equal(t, ProviderOpenAI, ConfigFor("something-else").Provider)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderOpenAI,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gpt-4o-2024-08-06", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gpt-4o", newConfig.GetModel(TierStandard))

	// Empty override keeps the existing model
	assert.Equal(t, "gpt-4o", config.WithModel(TierStandard, "").GetModel(TierStandard))
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultOpenAIConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
