package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// versionCommitRetries bounds retries when concurrent snapshots conflict
// on the per-group version counter.
const versionCommitRetries = 5

// DraftRepository implements storage.DraftRepository for BadgerDB.
type DraftRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	drafts  *badger.Sequence
}

var _ storage.DraftRepository = (*DraftRepository)(nil)

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(backend *Backend) (*DraftRepository, error) {
	idSeq, err := backend.GetSequence(groupIDSeq)
	if err != nil {
		return nil, err
	}
	drafts, err := backend.GetSequence(draftIDSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	return &DraftRepository{
		backend: backend,
		idSeq:   idSeq,
		drafts:  drafts,
	}, nil
}

// Close releases the ID sequences.
func (r *DraftRepository) Close() error {
	err := r.idSeq.Release()
	if releaseErr := r.drafts.Release(); releaseErr != nil && err == nil {
		err = releaseErr
	}
	return err
}

// WithTransaction delegates to the backend.
func (r *DraftRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDraftGroups adds one or more draft groups to storage.
func (r *DraftRepository) AddDraftGroups(ctx context.Context, groups ...*core.DraftGroup) ([]*core.DraftGroup, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, group := range groups {
			if group.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				group.Id = nextID
			}
			if group.Status == 0 {
				group.Status = core.DraftStatusPending
			}

			group.InsertedAt = time.Now().UTC()
			group.UpdatedAt = group.InsertedAt

			key := makeRecordKey(groupPrefix, group.Id)
			if err := tx.Set(key, storage.MarshalDraftGroup(group)); err != nil {
				return err
			}

			prjKey := makeScopeKey(groupProjectPrefix, group.ProjectId, group.Id)
			if err := tx.Set(prjKey, storage.MarshalID(group.Id)); err != nil {
				return err
			}

			// One group per section; the section index maps directly to the group
			secKey := makeRecordKey(groupSectionPrefix, group.SectionId)
			if err := tx.Set(secKey, storage.MarshalID(group.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return groups, err
}

// UpdateDraftGroups updates existing draft groups.
func (r *DraftRepository) UpdateDraftGroups(ctx context.Context, groups ...*core.DraftGroup) ([]*core.DraftGroup, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, group := range groups {
			key := makeRecordKey(groupPrefix, group.Id)

			old, err := readDraftGroup(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			group.InsertedAt = old.InsertedAt
			group.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalDraftGroup(group)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return groups, err
}

// DeleteDraftGroupsByProject removes every draft group of a project along
// with their version history.
func (r *DraftRepository) DeleteDraftGroupsByProject(ctx context.Context, projectID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, groupProjectPrefix, projectID, func(id core.ID) error {
			group, err := readDraftGroup(tx, makeRecordKey(groupPrefix, id))
			if err != nil {
				return err
			}
			if group == nil {
				return nil
			}

			if err := tx.Delete(makeRecordKey(groupSectionPrefix, group.SectionId)); err != nil {
				return err
			}
			if err := deleteDraftVersions(tx, group.Id); err != nil {
				return err
			}
			if err := tx.Delete(makeDraftCounterKey(group.Id)); err != nil {
				return err
			}
			return tx.Delete(makeRecordKey(groupPrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDraftGroup retrieves a single draft group by ID.
func (r *DraftRepository) GetDraftGroup(ctx context.Context, id core.ID) (*core.DraftGroup, error) {
	var result *core.DraftGroup
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDraftGroup(tx, makeRecordKey(groupPrefix, id))
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

// GetDraftGroupBySection retrieves the draft group owned by a section.
func (r *DraftRepository) GetDraftGroupBySection(ctx context.Context, sectionID core.ID) (*core.DraftGroup, error) {
	var result *core.DraftGroup
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(groupSectionPrefix, sectionID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var groupID core.ID
		if err := item.Value(func(val []byte) error {
			groupID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readDraftGroup(tx, makeRecordKey(groupPrefix, groupID))
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

// GetDraftGroupsByProject retrieves all draft groups of a project.
func (r *DraftRepository) GetDraftGroupsByProject(ctx context.Context, projectID core.ID) ([]*core.DraftGroup, error) {
	var results []*core.DraftGroup
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, groupProjectPrefix, projectID, func(id core.ID) error {
			group, err := readDraftGroup(tx, makeRecordKey(groupPrefix, id))
			if err != nil {
				return err
			}
			if group != nil {
				results = append(results, group)
			}
			return nil
		})
	}, false)
	return results, err
}

// AddDraftVersion appends a version snapshot to a group's history.
// The version number comes from a per-group counter incremented in the same
// transaction as the write, so concurrent snapshots never share a version.
// Conflicting transactions are retried.
func (r *DraftRepository) AddDraftVersion(ctx context.Context, draft *core.ResponseDraft) (*core.ResponseDraft, error) {
	if draft.Id == 0 {
		nextID, err := nextSequenceID(r.drafts)
		if err != nil {
			return nil, err
		}
		draft.Id = nextID
	}

	var lastErr error
	for attempt := 0; attempt < versionCommitRetries; attempt++ {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			version, err := nextDraftVersion(tx, draft.GroupId)
			if err != nil {
				return err
			}
			draft.Version = version
			draft.InsertedAt = time.Now().UTC()

			key := makeDraftVersionKey(draft.GroupId, draft.Version)
			if err := tx.Set(key, storage.MarshalDraft(draft)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err == nil {
			return draft, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// GetDraftVersions retrieves a group's version history, newest first.
func (r *DraftRepository) GetDraftVersions(ctx context.Context, groupID core.ID) ([]*core.ResponseDraft, error) {
	var results []*core.ResponseDraft
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialScopeKey(draftPrefix, groupID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var draft *core.ResponseDraft
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				draft, err = storage.UnmarshalDraft(val)
				return err
			}); err != nil {
				return err
			}
			if draft != nil {
				results = append(results, draft)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.ResponseDraft) int {
		return b.Version - a.Version
	})

	return results, nil
}

// Helper methods

// nextDraftVersion increments and returns the group's version counter
// within the transaction.
func nextDraftVersion(tx *badger.Txn, groupID core.ID) (int, error) {
	key := makeDraftCounterKey(groupID)

	var current uint64
	item, err := tx.Get(key)
	if err != nil {
		if err != badger.ErrKeyNotFound {
			return 0, err
		}
	} else {
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return storage.ErrTruncatedData
			}
			current = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := tx.Set(key, buf); err != nil {
		return 0, err
	}
	return int(next), nil
}

// deleteDraftVersions removes a group's whole version history.
func deleteDraftVersions(tx *badger.Txn, groupID core.ID) error {
	prefix := makePartialScopeKey(draftPrefix, groupID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// readDraftGroup reads a draft group from the transaction.
func readDraftGroup(tx *badger.Txn, key []byte) (*core.DraftGroup, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var group *core.DraftGroup
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		group, unmarshalErr = storage.UnmarshalDraftGroup(val)
		return unmarshalErr
	})
	return group, err
}
