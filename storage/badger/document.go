package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				doc.Id = nextID
			}

			doc.InsertedAt = time.Now().UTC()
			doc.UpdatedAt = doc.InsertedAt

			// Store primary record
			key := makeRecordKey(documentPrefix, doc.Id)
			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}

			// Update project index
			prjKey := makeScopeKey(documentProjectPrefix, doc.ProjectId, doc.Id)
			if err := tx.Set(prjKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeRecordKey(documentPrefix, doc.Id)

			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(documentPrefix, id)

			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			// Delete from project index
			prjKey := makeScopeKey(documentProjectPrefix, doc.ProjectId, doc.Id)
			if err := tx.Delete(prjKey); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeRecordKey(documentPrefix, id))
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

// GetDocumentsByProject retrieves all documents belonging to a project.
func (r *DocumentRepository) GetDocumentsByProject(ctx context.Context, projectID core.ID) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, documentProjectPrefix, projectID, func(id core.ID) error {
			doc, err := readDocument(tx, makeRecordKey(documentPrefix, id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
			return nil
		})
	}, false)
	return results, err
}

// GetDocumentsByKind retrieves a project's documents of a given kind.
func (r *DocumentRepository) GetDocumentsByKind(ctx context.Context, projectID core.ID, kind core.DocumentKind) ([]*core.Document, error) {
	docs, err := r.GetDocumentsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var results []*core.Document
	for _, doc := range docs {
		if doc.Kind == kind {
			results = append(results, doc)
		}
	}
	return results, nil
}

// Helper methods

// readDocument reads a document from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// nextSequenceID draws the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextSequenceID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// scanScope iterates one scope of a composite index, invoking fn with each
// indexed entity ID in key order.
func scanScope(tx *badger.Txn, prefix string, scopeID core.ID, fn func(id core.ID) error) error {
	startKey := makePartialScopeKey(prefix, scopeID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = startKey
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var entityID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			entityID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}
		if err := fn(entityID); err != nil {
			return err
		}
	}
	return nil
}

// deleteScope removes every index entry and primary record in a scope.
// deleteRecord receives each entity ID and removes its primary record plus
// any secondary indexes.
func deleteScope(tx *badger.Txn, prefix string, scopeID core.ID, deleteRecord func(id core.ID) error) error {
	startKey := makePartialScopeKey(prefix, scopeID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = startKey
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var indexKeys [][]byte
	var entityIDs []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().KeyCopy(nil)
		var entityID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			entityID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}
		indexKeys = append(indexKeys, key)
		entityIDs = append(entityIDs, entityID)
	}

	for _, key := range indexKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	for _, id := range entityIDs {
		if err := deleteRecord(id); err != nil {
			return err
		}
	}
	return nil
}
