package llm

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/schemas"
)

// Role of a message in a request
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one turn of a request
type Message struct {
	Role    Role
	Content string
}

// Request is a single provider call
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	// Schema constrains the reply to JSON when set
	Schema *schemas.Schema
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate performs one provider call and returns the raw reply text
	Generate(ctx context.Context, req Request) (string, error)
	// GetModel returns the provider model configured for a tier
	GetModel(tier ModelTier) string
	// Provider names the backing provider
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a provider client. A missing API key is a configuration error.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, apperr.Config("llm.NewClient", fmt.Sprintf("API key for provider %q is required", config.Provider))
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, apperr.Config("llm.NewClient", fmt.Sprintf("unsupported provider %q", config.Provider))
	}
}

// splitMessages joins system turns and user turns into two blocks
func splitMessages(msgs []Message) (system, user string) {
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = joinBlock(system, m.Content)
		default:
			user = joinBlock(user, m.Content)
		}
	}
	return system, user
}

func joinBlock(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n\n" + b
}
