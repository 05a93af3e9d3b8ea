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


// Package langchain provides AI service implementations over the
// Anthropic and OpenAI APIs.
//
// This package implements the ai.Provider interface using the
// langchaingo library. Generation requests are dispatched to the
// vendor named by the model's registry entry; embeddings always use
// the OpenAI endpoint.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithAnthropicKey(os.Getenv("ANTHROPIC_API_KEY")),
//	    ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//
//	provider, err := langchain.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	model := ai.ResolveModel(ai.OperationDrafting, nil, nil)
//	text, err := provider.Generator().Generate(ctx, model, systemPrompt, userPrompt)
//	vectors, err := provider.Embedder().EmbedTexts(ctx, chunks)
//
// A missing API key does not fail provider construction; operations
// routed to the absent vendor return ai.ErrAnthropicNotConfigured or
// ai.ErrOpenAINotConfigured when invoked. This lets deployments with a
// single vendor key run every operation assigned to that vendor.
package langchain
