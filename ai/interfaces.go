package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenFunc receives incremental output tokens during streaming generation.
type TokenFunc func(token string)

// Generator produces text completions from large language models.
// The model argument selects which registered model handles the request;
// implementations dispatch to the matching vendor client.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate produces a complete text response for the given prompts.
	// Returns an error if the model's vendor is not configured or the
	// request fails.
	Generate(ctx context.Context, model Model, systemPrompt, userPrompt string) (string, error)

	// Stream produces a text response incrementally, invoking onToken for
	// each output fragment as it arrives. The full accumulated text is
	// returned once the stream completes. onToken may be nil.
	Stream(ctx context.Context, model Model, systemPrompt, userPrompt string, onToken TokenFunc) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Generator and Embedder instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
