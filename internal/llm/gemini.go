package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apperr.Config("llm.NewGeminiClient", "GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate performs one GenerateContent call
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.GetModel(TierStandard)
	}
	if modelName == "" {
		return "", apperr.Config("llm.gemini", "no model configured")
	}

	system, user := splitMessages(req.Messages)

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGenAISchema(req.Schema.Document("default", "$schema", "title", "additionalProperties", "minimum", "maximum", "maxLength"))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider returns ProviderGemini
func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// toGenAISchema converts a JSON schema document into Gemini's schema type.
// A type list containing "null" becomes a nullable schema of the other type.
func toGenAISchema(node map[string]any) *genai.Schema {
	if node == nil {
		return nil
	}
	s := &genai.Schema{}

	typeName, nullable := schemaType(node["type"])
	s.Nullable = nullable
	switch typeName {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}

	if desc, ok := node["description"].(string); ok {
		s.Description = desc
	}
	if enum, ok := node["enum"].([]any); ok {
		s.Format = "enum"
		for _, e := range enum {
			if v, ok := e.(string); ok {
				s.Enum = append(s.Enum, v)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		s.Items = toGenAISchema(items)
	}
	if props, ok := node["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if child, ok := p.(map[string]any); ok {
				s.Properties[name] = toGenAISchema(child)
			}
		}
	}
	if required, ok := node["required"].([]any); ok {
		for _, r := range required {
			if v, ok := r.(string); ok {
				s.Required = append(s.Required, v)
			}
		}
	}
	return s
}

func schemaType(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, false
	case []any:
		name, nullable := "", false
		for _, x := range t {
			s, _ := x.(string)
			if s == "null" {
				nullable = true
			} else if name == "" {
				name = s
			}
		}
		return name, nullable
	}
	return "", false
}
