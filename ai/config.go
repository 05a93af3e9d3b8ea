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


package ai

import (
	"errors"
	"strings"
)

// Config holds credentials and endpoints for the AI vendors.
// A key may be left empty; models served by that vendor then report
// an error when invoked rather than at construction time.
type Config struct {
	// AnthropicKey is the API key for Anthropic models.
	AnthropicKey string

	// OpenAIKey is the API key for OpenAI models and embeddings.
	OpenAIKey string

	// OpenAIHost is the base URL for the OpenAI-compatible API.
	// Example: "https://api.openai.com/v1", or a local gateway URL.
	OpenAIHost string

	// EmbeddingModel is the model identifier used for text embeddings.
	// Embeddings always go through the OpenAI endpoint.
	// Example: "text-embedding-3-small"
	EmbeddingModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAnthropicKey sets the Anthropic API key.
func WithAnthropicKey(key string) ConfigOption {
	return func(c *Config) {
		c.AnthropicKey = key
	}
}

// WithOpenAIKey sets the OpenAI API key.
func WithOpenAIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIKey = key
	}
}

// WithOpenAIHost sets the OpenAI-compatible API base URL.
func WithOpenAIHost(host string) ConfigOption {
	return func(c *Config) {
		c.OpenAIHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// DefaultConfig returns a Config pointing at the public vendor APIs,
// with no credentials set.
func DefaultConfig() *Config {
	return &Config{
		OpenAIHost:     "https://api.openai.com/v1",
		EmbeddingModel: "text-embedding-3-small",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAnthropicKey(os.Getenv("ANTHROPIC_API_KEY")),
//	    WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the OpenAI host if missing, which the
// OpenAI-compatible APIs (including local gateways) require.
func (c *Config) Normalize() {
	if c.OpenAIHost != "" && !strings.HasSuffix(c.OpenAIHost, "/v1") {
		c.OpenAIHost = strings.TrimSuffix(c.OpenAIHost, "/")
		c.OpenAIHost = c.OpenAIHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Missing API keys are not an error here; they surface when a model
// from the unconfigured vendor is invoked.
func (c *Config) Validate() error {
	c.Normalize()

	if c.OpenAIHost == "" {
		return errors.New("ai config: OpenAIHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}
