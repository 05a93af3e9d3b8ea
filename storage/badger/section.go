package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// SectionRepository implements storage.SectionRepository for BadgerDB.
type SectionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SectionRepository = (*SectionRepository)(nil)

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(backend *Backend) (*SectionRepository, error) {
	idSeq, err := backend.GetSequence(sectionIDSeq)
	if err != nil {
		return nil, err
	}

	return &SectionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SectionRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSections adds one or more sections to storage.
func (r *SectionRepository) AddSections(ctx context.Context, sections ...*core.OutlineSection) ([]*core.OutlineSection, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			if section.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				section.Id = nextID
			}

			section.InsertedAt = time.Now().UTC()
			section.UpdatedAt = section.InsertedAt

			key := makeRecordKey(sectionPrefix, section.Id)
			if err := tx.Set(key, storage.MarshalSection(section)); err != nil {
				return err
			}

			prjKey := makeScopeKey(sectionProjectPrefix, section.ProjectId, section.Id)
			if err := tx.Set(prjKey, storage.MarshalID(section.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// UpdateSections updates existing sections.
func (r *SectionRepository) UpdateSections(ctx context.Context, sections ...*core.OutlineSection) ([]*core.OutlineSection, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			key := makeRecordKey(sectionPrefix, section.Id)

			old, err := readSection(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			section.InsertedAt = old.InsertedAt
			section.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalSection(section)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// DeleteSections removes sections by their IDs.
func (r *SectionRepository) DeleteSections(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(sectionPrefix, id)

			section, err := readSection(tx, key)
			if err != nil {
				return err
			}
			if section == nil {
				return storage.ErrNotFound
			}

			prjKey := makeScopeKey(sectionProjectPrefix, section.ProjectId, section.Id)
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

// DeleteSectionsByProject removes every section of a project.
func (r *SectionRepository) DeleteSectionsByProject(ctx context.Context, projectID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, sectionProjectPrefix, projectID, func(id core.ID) error {
			return tx.Delete(makeRecordKey(sectionPrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSection retrieves a single section by ID.
func (r *SectionRepository) GetSection(ctx context.Context, id core.ID) (*core.OutlineSection, error) {
	var result *core.OutlineSection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSection(tx, makeRecordKey(sectionPrefix, id))
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

// GetSectionsByProject retrieves a project's sections ordered by
// (ParentId, Position).
func (r *SectionRepository) GetSectionsByProject(ctx context.Context, projectID core.ID) ([]*core.OutlineSection, error) {
	var results []*core.OutlineSection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, sectionProjectPrefix, projectID, func(id core.ID) error {
			section, err := readSection(tx, makeRecordKey(sectionPrefix, id))
			if err != nil {
				return err
			}
			if section != nil {
				results = append(results, section)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.OutlineSection) int {
		if a.ParentId != b.ParentId {
			if a.ParentId < b.ParentId {
				return -1
			}
			return 1
		}
		return a.Position - b.Position
	})

	return results, nil
}

// readSection reads a section from the transaction.
func readSection(tx *badger.Txn, key []byte) (*core.OutlineSection, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var section *core.OutlineSection
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		section, unmarshalErr = storage.UnmarshalSection(val)
		return unmarshalErr
	})
	return section, err
}
