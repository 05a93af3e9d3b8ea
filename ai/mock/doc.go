// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	reply, err := mockProvider.Generator().Generate(ctx, model, system, prompt)
//
//	// Custom behavior injection
//	mockGen := mock.NewMockGenerator()
//	mockGen.GenerateFunc = func(ctx context.Context, model ai.Model, system, prompt string) (string, error) {
//	    return `[{"kind": "question"}]`, nil
//	}
//
//	// Check call counts and recorded prompts
//	count := mockGen.CallCount()
//	prompt := mockGen.LastUserPrompt
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockGenerator: Returns a canned reply naming the model and echoing
//     a prompt excerpt; Stream delivers it as a single token
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates mock generator and embedder
package mock
