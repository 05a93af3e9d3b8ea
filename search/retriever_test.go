package search

import (
	"context"
	"errors"
	"testing"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai/mock"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProjectID = core.ID(7)

func newTestRetriever(t *testing.T) (*Retriever, *badger.Repositories, *mock.MockEmbedder) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(repos.Chunks, embedder)
	require.NoError(t, err)

	return retriever, repos, embedder
}

func addChunk(t *testing.T, repos *badger.Repositories, docID core.ID, content string, vector []float32) *core.DocumentChunk {
	t.Helper()

	chunks, err := repos.Chunks.AddChunks(context.Background(), &core.DocumentChunk{
		ProjectId:  testProjectID,
		DocumentId: docID,
		Content:    content,
		EndChar:    len(content),
		Vector:     vector,
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	return chunks[0]
}

func TestNewRetriever(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	t.Run("requires chunk repository", func(t *testing.T) {
		_, err := NewRetriever(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewRetriever(repos.Chunks, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("valid arguments", func(t *testing.T) {
		retriever, err := NewRetriever(repos.Chunks, mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, retriever)
	})
}

func TestSearchEmptyProject(t *testing.T) {
	retriever, _, embedder := newTestRetriever(t)

	results, err := retriever.Search(context.Background(), testProjectID, "méthodologie", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	// No chunks means no reason to embed the query.
	assert.Zero(t, embedder.CallCount())
}

func TestSearchRanksByCombinedScore(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	// All chunks share the same vector, so the semantic signal ties and
	// lexical plus fuzzy decide the order.
	vector := []float32{1, 0, 0}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}

	onTopic := addChunk(t, repos, 1, "Notre méthodologie de gestion de projet agile repose sur des sprints.", vector)
	offTopic := addChunk(t, repos, 2, "Les tarifs sont revus annuellement selon l'indice Syntec.", vector)

	results, err := retriever.Search(context.Background(), testProjectID, "méthodologie gestion projet", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, onTopic.Id, results[0].Chunk.Id)
	assert.Equal(t, offTopic.Id, results[1].Chunk.Id)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchSemanticSignalDominates(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	aligned := addChunk(t, repos, 1, "Contenu sans rapport direct avec les termes cherchés.", []float32{1, 0, 0})
	opposed := addChunk(t, repos, 2, "Autre contenu sans rapport direct avec les termes cherchés.", []float32{-1, 0, 0})

	results, err := retriever.Search(context.Background(), testProjectID, "certification qualité", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, aligned.Id, results[0].Chunk.Id)
	assert.Equal(t, opposed.Id, results[1].Chunk.Id)
}

func TestSearchSkipsChunksWithoutEmbedding(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	vector := []float32{0, 1, 0}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}

	embedded := addChunk(t, repos, 1, "Chunk avec embedding.", vector)
	addChunk(t, repos, 2, "Chunk jamais embeddé.", nil)

	results, err := retriever.Search(context.Background(), testProjectID, "embedding", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, embedded.Id, results[0].Chunk.Id)
}

func TestSearchDegradesOnEmbeddingFailure(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	addChunk(t, repos, 1, "Du contenu indexé.", []float32{1, 0, 0})
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}

	results, err := retriever.Search(context.Background(), testProjectID, "contenu", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRespectsLimit(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	vector := []float32{1, 0, 0}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}

	contents := []string{
		"Premier chunk de connaissance métier.",
		"Deuxième chunk de connaissance métier.",
		"Troisième chunk de connaissance métier.",
		"Quatrième chunk de connaissance métier.",
	}
	for i, content := range contents {
		addChunk(t, repos, core.ID(i+1), content, vector)
	}

	results, err := retriever.Search(context.Background(), testProjectID, "connaissance", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchScopedToProject(t *testing.T) {
	retriever, repos, embedder := newTestRetriever(t)

	vector := []float32{1, 0, 0}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}

	addChunk(t, repos, 1, "Chunk du projet sous test.", vector)
	_, err := repos.Chunks.AddChunks(context.Background(), &core.DocumentChunk{
		ProjectId:  testProjectID + 1,
		DocumentId: 2,
		Content:    "Chunk d'un autre projet.",
		EndChar:    24,
		Vector:     vector,
	})
	require.NoError(t, err)

	results, err := retriever.Search(context.Background(), testProjectID, "projet", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, testProjectID, results[0].Chunk.ProjectId)
}

func TestCombinedScoreWeights(t *testing.T) {
	// The three weights form a convex combination.
	assert.InDelta(t, 1.0, semanticWeight+lexicalWeight+fuzzyWeight, 1e-9)

	// Spot-check the arithmetic the retriever applies.
	var semantic, lexical, fuzzy float32 = 0.8, 0.5, 0.2
	combined := semanticWeight*semantic + lexicalWeight*lexical + fuzzyWeight*fuzzy
	assert.InDelta(t, 0.65, combined, 1e-6)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposed", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"unnormalized", []float32{2, 0, 0}, []float32{5, 0, 0}, 1},
		{"mismatched dimensions", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestLexicalRank(t *testing.T) {
	t.Run("no terms in common", func(t *testing.T) {
		rank := lexicalRank([]string{"certification"}, "Planning détaillé du déploiement.")
		assert.Zero(t, rank)
	})

	t.Run("full coverage outranks partial", func(t *testing.T) {
		terms := []string{"méthodologie", "agile"}
		full := lexicalRank(terms, "Notre méthodologie agile éprouvée.")
		partial := lexicalRank(terms, "Notre méthodologie éprouvée.")
		assert.Greater(t, full, partial)
	})

	t.Run("repetition increases rank", func(t *testing.T) {
		terms := []string{"qualité"}
		once := lexicalRank(terms, "La qualité du service.")
		twice := lexicalRank(terms, "La qualité appelle la qualité.")
		assert.Greater(t, twice, once)
	})

	t.Run("bounded below one", func(t *testing.T) {
		rank := lexicalRank([]string{"audit"}, "audit audit audit audit audit audit")
		assert.Less(t, rank, float32(1))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Zero(t, lexicalRank(nil, "contenu"))
	})
}

func TestTokenizeAndFilter(t *testing.T) {
	t.Run("filters french stop words", func(t *testing.T) {
		tokens := tokenizeAndFilter("Décrivez la méthodologie de votre équipe pour le projet.")
		assert.Equal(t, []string{"décrivez", "méthodologie", "équipe", "projet"}, tokens)
	})

	t.Run("filters english stop words", func(t *testing.T) {
		tokens := tokenizeAndFilter("Describe the methodology of your team.")
		assert.Equal(t, []string{"describe", "methodology", "your", "team"}, tokens)
	})

	t.Run("trims punctuation", func(t *testing.T) {
		tokens := tokenizeAndFilter("«Qualité», (planning)!")
		assert.Equal(t, []string{"qualité", "planning"}, tokens)
	})
}
