package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIClient implements Client using OpenAI structured outputs (strict json_schema).
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []oaioption.RequestOption{oaioption.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// GenerateStructured generates JSON constrained by req.Schema
func (c *OpenAIClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	model, err := modelFor(c.config, req.Tier)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	jsonSchema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   req.Schema.Name,
		Schema: req.Schema.JSONSchema(),
		Strict: openai.Bool(true),
	}
	if req.Schema.Description != "" {
		jsonSchema.Description = openai.String(req.Schema.Description)
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema},
		},
	}
	if c.config.Temperature > 0 {
		params.Temperature = openai.Float(float64(c.config.Temperature))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		msg := "chat completion failed"
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg = fmt.Sprintf("chat completion failed with status %d", apiErr.StatusCode)
		}
		return "", &BackendError{Provider: ProviderOpenAI, Model: model, Message: msg, Cause: err}
	}

	if len(completion.Choices) == 0 {
		return "", &BackendError{Provider: ProviderOpenAI, Model: model, Message: "no completion choices returned"}
	}

	message := completion.Choices[0].Message
	if message.Refusal != "" {
		return "", &BackendError{Provider: ProviderOpenAI, Model: model, Message: "model refused: " + message.Refusal}
	}
	if message.Content == "" {
		return "", &BackendError{Provider: ProviderOpenAI, Model: model, Message: "empty completion content"}
	}

	return CleanJSONBlock(message.Content), nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the OpenAI client holds no long-lived resources.
func (c *OpenAIClient) Close() error {
	return nil
}
