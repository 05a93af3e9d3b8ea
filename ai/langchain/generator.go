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


package langchain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator over the Anthropic and OpenAI chat
// APIs. Requests are dispatched to the vendor named by the model's
// registry entry. A vendor whose API key is absent from the config has
// a nil client; invoking one of its models returns the matching
// not-configured error.
type Generator struct {
	anthropicClient llms.Model
	openaiClient    llms.Model
	logger          *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "langchain-generator")
	g := &Generator{logger: logger}

	if config.AnthropicKey != "" {
		client, err := anthropic.New(anthropic.WithToken(config.AnthropicKey))
		if err != nil {
			return nil, err
		}
		g.anthropicClient = client
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, Anthropic models unavailable")
	}

	if config.OpenAIKey != "" {
		client, err := openai.New(
			openai.WithBaseURL(config.OpenAIHost),
			openai.WithToken(config.OpenAIKey),
		)
		if err != nil {
			return nil, err
		}
		g.openaiClient = client
	} else {
		logger.Warn("OPENAI_API_KEY not set, OpenAI models unavailable")
	}

	return g, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// clientFor returns the vendor client serving the given model.
func (g *Generator) clientFor(model ai.Model) (llms.Model, error) {
	switch model.Vendor {
	case ai.VendorAnthropic:
		if g.anthropicClient == nil {
			return nil, ai.ErrAnthropicNotConfigured
		}
		return g.anthropicClient, nil
	default:
		if g.openaiClient == nil {
			return nil, ai.ErrOpenAINotConfigured
		}
		return g.openaiClient, nil
	}
}

// buildContent assembles the system and user prompts into chat messages.
// An empty system prompt is omitted.
func buildContent(systemPrompt, userPrompt string) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
	})
	return content
}

// Generate produces a complete text response for the given prompts.
func (g *Generator) Generate(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
	client, err := g.clientFor(model)
	if err != nil {
		return "", err
	}

	g.logger.Debug("generating completion",
		"model", model.Id,
		"promptLength", len(userPrompt))

	response, err := client.GenerateContent(ctx, buildContent(systemPrompt, userPrompt),
		llms.WithModel(model.ModelId),
		llms.WithMaxTokens(model.MaxOutput))
	if err != nil {
		g.logger.Error("generation failed", "model", model.Id, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 || response.Choices[0].Content == "" {
		return "", ai.ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}

// Stream produces a text response incrementally via onToken and returns
// the full accumulated text.
func (g *Generator) Stream(ctx context.Context, model ai.Model, systemPrompt, userPrompt string, onToken ai.TokenFunc) (string, error) {
	client, err := g.clientFor(model)
	if err != nil {
		return "", err
	}

	g.logger.Debug("streaming completion",
		"model", model.Id,
		"promptLength", len(userPrompt))

	var full strings.Builder
	response, err := client.GenerateContent(ctx, buildContent(systemPrompt, userPrompt),
		llms.WithModel(model.ModelId),
		llms.WithMaxTokens(model.MaxOutput),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			full.Write(chunk)
			if onToken != nil {
				onToken(string(chunk))
			}
			return nil
		}))
	if err != nil {
		g.logger.Error("streaming failed", "model", model.Id, "err", err)
		return "", err
	}

	// Some backends deliver the final text only in the response choice.
	if full.Len() == 0 && len(response.Choices) > 0 {
		return response.Choices[0].Content, nil
	}
	return full.String(), nil
}
