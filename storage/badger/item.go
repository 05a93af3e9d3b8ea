package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems adds one or more extracted items to storage.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.ExtractedItem) ([]*core.ExtractedItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if item.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				item.Id = nextID
			}

			item.InsertedAt = time.Now().UTC()
			item.UpdatedAt = item.InsertedAt

			if err := r.writeItem(tx, item); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateItems updates existing items.
func (r *ItemRepository) UpdateItems(ctx context.Context, items ...*core.ExtractedItem) ([]*core.ExtractedItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeRecordKey(itemPrefix, item.Id)

			old, err := readItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			item.InsertedAt = old.InsertedAt
			item.UpdatedAt = time.Now().UTC()

			// Move the section index if the item was reassigned
			if old.SectionId != item.SectionId && old.SectionId != 0 {
				secKey := makeScopeKey(itemSectionPrefix, old.SectionId, old.Id)
				if err := tx.Delete(secKey); err != nil {
					return err
				}
			}

			if err := r.writeItem(tx, item); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteItems removes items by their IDs.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := r.deleteItem(tx, id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteItemsByProject removes every item of a project.
func (r *ItemRepository) DeleteItemsByProject(ctx context.Context, projectID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, itemProjectPrefix, projectID, func(id core.ID) error {
			item, err := readItem(tx, makeRecordKey(itemPrefix, id))
			if err != nil {
				return err
			}
			if item == nil {
				return nil
			}
			if item.SectionId != 0 {
				secKey := makeScopeKey(itemSectionPrefix, item.SectionId, item.Id)
				if err := tx.Delete(secKey); err != nil {
					return err
				}
			}
			return tx.Delete(makeRecordKey(itemPrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.ExtractedItem, error) {
	var result *core.ExtractedItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readItem(tx, makeRecordKey(itemPrefix, id))
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

// GetItemsByProject retrieves all items of a project, ordered by insertion.
func (r *ItemRepository) GetItemsByProject(ctx context.Context, projectID core.ID) ([]*core.ExtractedItem, error) {
	var results []*core.ExtractedItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, itemProjectPrefix, projectID, func(id core.ID) error {
			item, err := readItem(tx, makeRecordKey(itemPrefix, id))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
			return nil
		})
	}, false)
	return results, err
}

// GetItemsBySection retrieves the items assigned to an outline section.
func (r *ItemRepository) GetItemsBySection(ctx context.Context, sectionID core.ID) ([]*core.ExtractedItem, error) {
	var results []*core.ExtractedItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, itemSectionPrefix, sectionID, func(id core.ID) error {
			item, err := readItem(tx, makeRecordKey(itemPrefix, id))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
			return nil
		})
	}, false)
	return results, err
}

// Helper methods

// writeItem stores an item and its index entries.
func (r *ItemRepository) writeItem(tx *badger.Txn, item *core.ExtractedItem) error {
	key := makeRecordKey(itemPrefix, item.Id)
	if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
		return err
	}

	prjKey := makeScopeKey(itemProjectPrefix, item.ProjectId, item.Id)
	if err := tx.Set(prjKey, storage.MarshalID(item.Id)); err != nil {
		return err
	}

	if item.SectionId != 0 {
		secKey := makeScopeKey(itemSectionPrefix, item.SectionId, item.Id)
		if err := tx.Set(secKey, storage.MarshalID(item.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteItem removes an item and its index entries.
func (r *ItemRepository) deleteItem(tx *badger.Txn, id core.ID) error {
	key := makeRecordKey(itemPrefix, id)

	item, err := readItem(tx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return storage.ErrNotFound
	}

	prjKey := makeScopeKey(itemProjectPrefix, item.ProjectId, item.Id)
	if err := tx.Delete(prjKey); err != nil {
		return err
	}

	if item.SectionId != 0 {
		secKey := makeScopeKey(itemSectionPrefix, item.SectionId, item.Id)
		if err := tx.Delete(secKey); err != nil {
			return err
		}
	}

	return tx.Delete(key)
}

// readItem reads an item from the transaction.
func readItem(tx *badger.Txn, key []byte) (*core.ExtractedItem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ExtractedItem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return record, err
}
