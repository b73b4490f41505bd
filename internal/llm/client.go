package llm

import (
	"context"
	"fmt"
)

// Request is a single schema-constrained generation call.
type Request struct {
	Tier   ModelTier
	System string
	Prompt string
	Schema Schema
}

// Client is an abstraction over LLM providers.
// Implementations are safe for concurrent use.
type Client interface {
	// GenerateStructured returns the raw JSON text the model produced for req.
	// The caller is responsible for validating it against req.Schema.
	GenerateStructured(ctx context.Context, req Request) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

func modelFor(config *Config, tier ModelTier) (string, error) {
	model := config.GetModel(tier)
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	return model, nil
}
