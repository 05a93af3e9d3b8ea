// Package reindex re-embeds a project's knowledge-base chunks with the
// currently configured embedding model.
//
// Switching embedding models invalidates every stored vector, because
// vectors from different models are not comparable. Rather than
// re-running the whole setup pipeline, reindexing walks the existing
// chunks in batches, regenerates their embeddings, and writes them back.
// The package supports batch processing, progress reporting, retry with
// exponential backoff, and vector normalization for cosine similarity.
package reindex
