// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/resume-verifier/internal/llm"
)

// MockClient implements llm.Client for testing. Replies are looked up by schema name
// unless GenerateFunc is set.
type MockClient struct {
	GenerateFunc func(ctx context.Context, req llm.Request) (string, error)
	// Replies maps a schema name to the raw reply returned for it
	Replies map[string]string
	// Errors maps a schema name to the error returned for it
	Errors map[string]error

	mu       sync.Mutex
	requests []llm.Request
}

// Generate records req and returns the configured reply
func (m *MockClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	name := ""
	if req.Schema != nil {
		name = req.Schema.Name
	}
	if err, ok := m.Errors[name]; ok {
		return "", err
	}
	if reply, ok := m.Replies[name]; ok {
		return reply, nil
	}
	return "", fmt.Errorf("llmtest: no reply configured for schema %q", name)
}

func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

func (m *MockClient) Provider() llm.Provider {
	return "mock"
}

func (m *MockClient) Close() error {
	return nil
}

// Requests returns a copy of every request seen so far
func (m *MockClient) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// Calls counts the requests made for the schema name
func (m *MockClient) Calls(schema string) int {
	n := 0
	for _, r := range m.Requests() {
		if r.Schema != nil && r.Schema.Name == schema {
			n++
		}
	}
	return n
}

// UserPrompts returns the user turns sent for the schema name
func (m *MockClient) UserPrompts(schema string) []string {
	var out []string
	for _, r := range m.Requests() {
		if r.Schema == nil || r.Schema.Name != schema {
			continue
		}
		var parts []string
		for _, msg := range r.Messages {
			if msg.Role == llm.RoleUser {
				parts = append(parts, msg.Content)
			}
		}
		out = append(out, strings.Join(parts, "\n"))
	}
	return out
}

// NewExtractor returns an extractor over m that does not wait between retries
func NewExtractor(m *MockClient, opts ...llm.ExtractorOption) *llm.Extractor {
	policy := llm.DefaultRetryPolicy()
	policy.BaseDelay = 0
	policy.MaxDelay = 0
	policy.Jitter = 0
	e, err := llm.NewExtractor(m, append([]llm.ExtractorOption{llm.WithRetryPolicy(policy)}, opts...)...)
	if err != nil {
		panic(err)
	}
	return e
}
