// Package model defines the Generator strategy behind every specialist
// agent's language-model call, with provider adapters in subpackages and
// in-process implementations for tests and degraded operation.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Provider identifiers used in Info.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFallback  = "fallback"
	ProviderMock      = "mock"
)

// Info describes a Generator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Generator is the minimal interface the specialist agents need: exactly one
// text completion per invocation, combining a system persona prompt with the
// assembled user context.
type Generator interface {
	GenerateText(ctx context.Context, systemPrompt, userContext string) (string, error)
	Info() Info
}

// MockGenerator is a deterministic in-memory Generator for tests. Canned
// responses are matched by substring against the system prompt; unmatched
// calls produce an echo of the context.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []MockCall
}

// MockCall records one GenerateText invocation.
type MockCall struct {
	SystemPrompt string
	UserContext  string
}

// NewMockGenerator constructs an empty mock.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{responses: make(map[string]string)}
}

// AddResponse registers a canned completion returned whenever the system
// prompt contains match.
func (m *MockGenerator) AddResponse(match, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[match] = response
}

// FailWith makes every subsequent call return err.
func (m *MockGenerator) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of the recorded invocations.
func (m *MockGenerator) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// GenerateText implements Generator.
func (m *MockGenerator) GenerateText(_ context.Context, systemPrompt, userContext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, UserContext: userContext})
	if m.err != nil {
		return "", m.err
	}
	for match, response := range m.responses {
		if strings.Contains(systemPrompt, match) {
			return response, nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", userContext), nil
}

// Info implements Generator.
func (m *MockGenerator) Info() Info { return Info{Name: "mock", Provider: ProviderMock} }

// FallbackGenerator produces degraded deterministic assessments when no
// language-model provider is configured. Selected at construction time so
// the pipeline carries no scattered runtime conditionals; its narratives are
// clearly marked so downstream consumers can tell them apart from real
// completions.
type FallbackGenerator struct{}

// NewFallbackGenerator constructs the degraded generator.
func NewFallbackGenerator() *FallbackGenerator { return &FallbackGenerator{} }

const fallbackContextLimit = 300

// GenerateText implements Generator without any external call.
func (f *FallbackGenerator) GenerateText(_ context.Context, _, userContext string) (string, error) {
	excerpt := userContext
	if len(excerpt) > fallbackContextLimit {
		excerpt = excerpt[:fallbackContextLimit] + "..."
	}
	return "Degraded assessment (no language model configured). " +
		"Recommendations are heuristic only; consult a healthcare professional. " +
		"Context reviewed: " + excerpt, nil
}

// Info implements Generator.
func (f *FallbackGenerator) Info() Info { return Info{Name: "degraded", Provider: ProviderFallback} }
