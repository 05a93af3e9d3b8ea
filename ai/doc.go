// Copyright 2025 Forecast Consulting
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI services used in ReponsIA.
//
// This package defines interfaces for text generation and embeddings,
// the model registry, the per-operation default prompts, and the
// override resolution rules. Business logic depends on these
// abstractions rather than on vendor SDKs.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Generator: Produces text completions, streaming or complete
//   - Embedder: Generates vector embeddings from text
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/langchain: Production implementation over the Anthropic and
//     OpenAI APIs
//   - ai/mock: Test doubles for unit testing without external services
//
// # Models and Operations
//
// Every AI workload is an Operation (analysis, structure, extraction,
// drafting, feedback, compliance, chat, embedding). Each operation is
// assigned a model from the registry; assignments can be overridden
// per project and per user, with project overrides winning:
//
//	model := ai.ResolveModel(ai.OperationDrafting, project.ModelOverrides, profile.DefaultModels)
//	prompt := ai.ResolvePrompt(ai.OperationDrafting, project.PromptOverrides, profile.DefaultPrompts)
//
// An override naming an unknown model falls through to the next level,
// so stale identifiers degrade gracefully instead of failing requests.
//
// # Constructor Return Type Pattern
//
// Public constructors (langchain.NewProvider) return INTERFACE types to
// enforce abstraction and prevent accidental coupling to concrete
// implementations.
//
// Test utility constructors (mock.NewMockGenerator, mock.NewMockEmbedder)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public fields and methods (CallCount, function fields,
// Reset).
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithAnthropicKey(os.Getenv("ANTHROPIC_API_KEY")),
//	    ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	provider, err := langchain.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	model := ai.ResolveModel(ai.OperationChat, nil, nil)
//	reply, err := provider.Generator().Generate(ctx, model, systemPrompt, userPrompt)
package ai
