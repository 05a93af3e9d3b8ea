package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
	"github.com/xrash/smetrics"
)

// Combined score weights. Semantic similarity dominates, lexical rank
// catches exact vocabulary, fuzzy similarity tolerates misspellings.
const (
	semanticWeight = 0.6
	lexicalWeight  = 0.3
	fuzzyWeight    = 0.1
)

// Retriever provides hybrid retrieval over a project's knowledge-base chunks.
type Retriever struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	logger          *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Retriever, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search retrieves the project chunks most relevant to the query.
// Returns up to limit results, ranked by combined score.
func (r *Retriever) Search(ctx context.Context, projectID core.ID, query string, limit int) ([]*core.RetrievedChunk, error) {
	return r.SearchWithMonitor(ctx, projectID, query, limit, nil)
}

// SearchWithMonitor retrieves relevant chunks with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
// Returns up to limit results, ranked by combined score.
func (r *Retriever) SearchWithMonitor(ctx context.Context, projectID core.ID, query string, limit int, monitor Monitor) ([]*core.RetrievedChunk, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(projectID, query)

	count, err := r.chunkRepository.CountChunksByProject(ctx, projectID)
	if err != nil {
		r.logger.Error("error counting project chunks", "projectID", projectID, "err", err)
		return nil, err
	}
	if count == 0 {
		monitor.Finish(nil)
		return []*core.RetrievedChunk{}, nil
	}

	// 1. Embed the query. An embedding failure degrades to empty
	// results so callers assembling best-effort context never fail.
	queryVector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, returning no results", "err", err)
		monitor.QueryEmbeddingFailed(err)
		monitor.Finish(nil)
		return []*core.RetrievedChunk{}, nil
	}
	monitor.QueryEmbedded(queryVector)

	// 2. Gather candidates. Every embedded chunk of the project is
	// scored; chunks without a vector are ineligible.
	chunks, err := r.chunkRepository.GetChunksByProject(ctx, projectID)
	if err != nil {
		r.logger.Error("error retrieving project chunks", "projectID", projectID, "err", err)
		return nil, err
	}
	monitor.AfterCandidateScan(func(yield func(uint64) bool) {
		for _, chunk := range chunks {
			if len(chunk.Vector) > 0 && !yield(uint64(chunk.Id)) {
				return
			}
		}
	})

	// 3. Score each candidate on all three signals.
	queryTerms := tokenizeAndFilter(query)
	queryLower := strings.ToLower(query)

	results := make([]*core.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}

		semantic := cosineSimilarity(queryVector, chunk.Vector)
		lexical := lexicalRank(queryTerms, chunk.Content)
		fuzzy := float32(smetrics.JaroWinkler(queryLower, strings.ToLower(chunk.Content), 0.7, 4))
		monitor.Scored(chunk, semantic, lexical, fuzzy)

		results = append(results, &core.RetrievedChunk{
			Chunk: chunk,
			Score: semanticWeight*semantic + lexicalWeight*lexical + fuzzyWeight*fuzzy,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched dimensions or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}
