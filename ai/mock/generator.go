package mock

import (
	"context"
	"fmt"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error)

	// StreamFunc is called by Stream if set.
	// If nil, Stream emits the Generate result as a single token.
	StreamFunc func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string, onToken ai.TokenFunc) (string, error)

	callCount int

	// LastModel records the model passed to the most recent call.
	LastModel ai.Model

	// LastSystemPrompt records the system prompt of the most recent call.
	LastSystemPrompt string

	// LastUserPrompt records the user prompt of the most recent call.
	LastUserPrompt string
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic response derived from the inputs.
func (m *MockGenerator) Generate(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
	m.record(model, systemPrompt, userPrompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, systemPrompt, userPrompt)
	}

	return defaultResponse(model, userPrompt), nil
}

// Stream delivers the Generate result through onToken, then returns it.
func (m *MockGenerator) Stream(ctx context.Context, model ai.Model, systemPrompt, userPrompt string, onToken ai.TokenFunc) (string, error) {
	if m.StreamFunc != nil {
		m.record(model, systemPrompt, userPrompt)
		return m.StreamFunc(ctx, model, systemPrompt, userPrompt, onToken)
	}

	text, err := m.Generate(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	if onToken != nil {
		onToken(text)
	}
	return text, nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count, recorded prompts, and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.LastModel = ai.Model{}
	m.LastSystemPrompt = ""
	m.LastUserPrompt = ""
	m.GenerateFunc = nil
	m.StreamFunc = nil
}

func (m *MockGenerator) record(model ai.Model, systemPrompt, userPrompt string) {
	m.callCount++
	m.LastModel = model
	m.LastSystemPrompt = systemPrompt
	m.LastUserPrompt = userPrompt
}

// defaultResponse produces a stable, inspection-friendly canned reply.
func defaultResponse(model ai.Model, userPrompt string) string {
	excerpt := userPrompt
	if len(excerpt) > 40 {
		excerpt = excerpt[:40]
	}
	return fmt.Sprintf("[%s] %s", model.Id, excerpt)
}
