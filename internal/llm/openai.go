package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

// openAIStrippedKeywords are rejected by strict structured outputs
var openAIStrippedKeywords = []string{"default", "$schema", "title", "minimum", "maximum", "maxLength"}

// OpenAIClient implements Client for OpenAI chat completions
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, apperr.Config("llm.NewOpenAIClient", "OPENAI_API_KEY is required")
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Generate performs one chat completion
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.GetModel(TierStandard)
	}
	if modelName == "" {
		return "", apperr.Config("llm.openai", "no model configured")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	// temperature is omitempty in the request type, so an exact zero would fall back to the server default
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: temperature,
	}
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema.Document(openAIStrippedKeywords...))
		if err != nil {
			return "", fmt.Errorf("failed to encode schema %s: %w", req.Schema.Name, err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(raw),
				Strict:      true,
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider returns ProviderOpenAI
func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// Close is a no-op; the HTTP client holds no resources
func (c *OpenAIClient) Close() error {
	return nil
}
