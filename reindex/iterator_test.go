package reindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
)

const testProjectID = core.ID(1)

func setupTestRepo(t *testing.T) (storage.ChunkRepository, func()) {
	backend, err := badger.OpenBackend("", true) // in-memory
	require.NoError(t, err)

	repo, err := badger.NewChunkRepository(backend)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		backend.Close()
	}

	return repo, cleanup
}

// seedChunks adds n chunks to the project. Offsets are distinct so each
// chunk gets a distinct content-based ID.
func seedChunks(t *testing.T, repo storage.ChunkRepository, projectID core.ID, n int) []*core.DocumentChunk {
	t.Helper()

	chunks := make([]*core.DocumentChunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.DocumentChunk{
			ProjectId:  projectID,
			DocumentId: core.ID(1),
			Content:    fmt.Sprintf("extrait du document numero %d", i),
			StartChar:  i * 100,
			EndChar:    i*100 + 99,
		}
	}
	added, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestChunkIterator_Basic(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, repo, testProjectID, 3)

	iter := NewChunkIterator(repo, 2) // Batch size of 2
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
		count += len(chunks)
		for _, c := range chunks {
			ids = append(ids, c.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 chunks")
	assert.Len(t, ids, 3, "should have 3 IDs")
}

func TestChunkIterator_BatchSizes(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, repo, testProjectID, 10)

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4}, // 3+3+3+1
		{"batch size 5", 5, 2}, // 5+5
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1}, // All in one batch
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewChunkIterator(repo, tt.batchSize)
			batchCount := 0
			totalChunks := 0

			err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
				batchCount++
				totalChunks += len(chunks)
				assert.LessOrEqual(t, len(chunks), tt.batchSize, "batch should not exceed batchSize")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount, "batch count")
			assert.Equal(t, 10, totalChunks, "total chunks")
		})
	}
}

func TestChunkIterator_EmptyProject(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()

	iter := NewChunkIterator(repo, 10)
	called := false

	err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not be called for an empty project")
}

func TestChunkIterator_ProjectIsolation(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, repo, testProjectID, 4)
	seedChunks(t, repo, core.ID(2), 3)

	iter := NewChunkIterator(repo, 10)
	total := 0

	err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
		total += len(chunks)
		for _, c := range chunks {
			assert.Equal(t, testProjectID, c.ProjectId)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, total, "should only see the requested project's chunks")
}

func TestChunkIterator_ErrorHandling(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, repo, testProjectID, 2)

	iter := NewChunkIterator(repo, 1)
	called := 0

	expectedErr := assert.AnError
	err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
		called++
		if called == 1 {
			return expectedErr
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return callback error")
	assert.Equal(t, 1, called, "should stop on first error")
}

func TestChunkIterator_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	seedChunks(t, repo, testProjectID, 5)

	iter := NewChunkIterator(repo, 1)
	called := 0

	err := iter.ForEach(ctx, testProjectID, func(chunks []*core.DocumentChunk) error {
		called++
		if called == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, called, "should process until context canceled")
}

func TestChunkIterator_InvalidBatchSize(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	// Zero batch size should be handled gracefully
	iter := NewChunkIterator(repo, 0)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for invalid input")

	// Negative batch size
	iter = NewChunkIterator(repo, -10)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for negative input")
}
