package ai

import "errors"

var (
	// ErrAnthropicNotConfigured is returned when a model served by
	// Anthropic is invoked without an Anthropic API key.
	ErrAnthropicNotConfigured = errors.New("anthropic API key not configured")

	// ErrOpenAINotConfigured is returned when a model served by OpenAI,
	// or an embedding request, is invoked without an OpenAI API key.
	ErrOpenAINotConfigured = errors.New("openai API key not configured")

	// ErrEmptyResponse is returned when a model replies with no content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)
