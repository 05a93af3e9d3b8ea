package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
// Chunk IDs are content-based, so re-indexing the same text is idempotent.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = chunkContentID(chunk)
			}

			chunk.InsertedAt = time.Now().UTC()

			key := makeRecordKey(chunkPrefix, chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			prjKey := makeScopeKey(chunkProjectPrefix, chunk.ProjectId, chunk.Id)
			if err := tx.Set(prjKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunks updates existing chunks, typically to attach embeddings.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeRecordKey(chunkPrefix, chunk.Id)

			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			chunk.InsertedAt = old.InsertedAt

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// DeleteChunksByProject removes every chunk of a project.
func (r *ChunkRepository) DeleteChunksByProject(ctx context.Context, projectID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, chunkProjectPrefix, projectID, func(id core.ID) error {
			return tx.Delete(makeRecordKey(chunkPrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.DocumentChunk, error) {
	var result *core.DocumentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeRecordKey(chunkPrefix, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByProject retrieves all chunks of a project.
func (r *ChunkRepository) GetChunksByProject(ctx context.Context, projectID core.ID) ([]*core.DocumentChunk, error) {
	var results []*core.DocumentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, chunkProjectPrefix, projectID, func(id core.ID) error {
			chunk, err := readChunk(tx, makeRecordKey(chunkPrefix, id))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
			return nil
		})
	}, false)
	return results, err
}

// CountChunksByProject reports how many chunks a project has.
func (r *ChunkRepository) CountChunksByProject(ctx context.Context, projectID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialScopeKey(chunkProjectPrefix, projectID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilarChunks delegates to the backend.
func (r *ChunkRepository) FindSimilarChunks(ctx context.Context, projectID core.ID, vector []float32, minSimilarity float32, limit int) ([]*core.RetrievedChunk, error) {
	return r.backend.FindSimilarChunks(ctx, projectID, vector, minSimilarity, limit)
}

// Helper methods

// chunkContentID derives a deterministic chunk ID from its document and
// offsets, so rebuilding the index produces stable IDs.
func chunkContentID(chunk *core.DocumentChunk) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d:%d:%d", chunk.DocumentId, chunk.StartChar, chunk.EndChar))
}

// readChunk reads a chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.DocumentChunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.DocumentChunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
