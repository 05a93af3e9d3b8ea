package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// FeedbackRepository implements storage.FeedbackRepository for BadgerDB.
type FeedbackRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(backend *Backend) (*FeedbackRepository, error) {
	idSeq, err := backend.GetSequence(feedbackIDSeq)
	if err != nil {
		return nil, err
	}

	return &FeedbackRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *FeedbackRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *FeedbackRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFeedback adds one or more feedback records to storage.
func (r *FeedbackRepository) AddFeedback(ctx context.Context, feedback ...*core.AnalysisFeedback) ([]*core.AnalysisFeedback, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fb := range feedback {
			if fb.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				fb.Id = nextID
			}

			fb.InsertedAt = time.Now().UTC()

			if err := writeFeedback(tx, fb); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return feedback, err
}

// UpdateFeedback updates existing feedback records.
func (r *FeedbackRepository) UpdateFeedback(ctx context.Context, feedback ...*core.AnalysisFeedback) ([]*core.AnalysisFeedback, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fb := range feedback {
			key := makeRecordKey(feedbackPrefix, fb.Id)

			old, err := readFeedback(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			fb.InsertedAt = old.InsertedAt

			// Move the item index if the link changed
			if old.ItemId != fb.ItemId && old.ItemId != 0 {
				itmKey := makeScopeKey(feedbackItemPrefix, old.ItemId, old.Id)
				if err := tx.Delete(itmKey); err != nil {
					return err
				}
			}

			if err := writeFeedback(tx, fb); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return feedback, err
}

// DeleteFeedbackByDocument removes the feedback extracted from a document.
func (r *FeedbackRepository) DeleteFeedbackByDocument(ctx context.Context, documentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, feedbackDocumentPrefix, documentID, func(id core.ID) error {
			fb, err := readFeedback(tx, makeRecordKey(feedbackPrefix, id))
			if err != nil {
				return err
			}
			if fb == nil {
				return nil
			}
			prjKey := makeScopeKey(feedbackProjectPrefix, fb.ProjectId, fb.Id)
			if err := tx.Delete(prjKey); err != nil {
				return err
			}
			if fb.ItemId != 0 {
				itmKey := makeScopeKey(feedbackItemPrefix, fb.ItemId, fb.Id)
				if err := tx.Delete(itmKey); err != nil {
					return err
				}
			}
			return tx.Delete(makeRecordKey(feedbackPrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetFeedbackByProject retrieves all feedback of a project.
func (r *FeedbackRepository) GetFeedbackByProject(ctx context.Context, projectID core.ID) ([]*core.AnalysisFeedback, error) {
	var results []*core.AnalysisFeedback
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, feedbackProjectPrefix, projectID, func(id core.ID) error {
			fb, err := readFeedback(tx, makeRecordKey(feedbackPrefix, id))
			if err != nil {
				return err
			}
			if fb != nil {
				results = append(results, fb)
			}
			return nil
		})
	}, false)
	return results, err
}

// GetFeedbackByItem retrieves the feedback linked to an extracted item.
func (r *FeedbackRepository) GetFeedbackByItem(ctx context.Context, itemID core.ID) ([]*core.AnalysisFeedback, error) {
	var results []*core.AnalysisFeedback
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, feedbackItemPrefix, itemID, func(id core.ID) error {
			fb, err := readFeedback(tx, makeRecordKey(feedbackPrefix, id))
			if err != nil {
				return err
			}
			if fb != nil {
				results = append(results, fb)
			}
			return nil
		})
	}, false)
	return results, err
}

// Helper methods

// writeFeedback stores a feedback record and its index entries.
func writeFeedback(tx *badger.Txn, fb *core.AnalysisFeedback) error {
	key := makeRecordKey(feedbackPrefix, fb.Id)
	if err := tx.Set(key, storage.MarshalFeedback(fb)); err != nil {
		return err
	}

	prjKey := makeScopeKey(feedbackProjectPrefix, fb.ProjectId, fb.Id)
	if err := tx.Set(prjKey, storage.MarshalID(fb.Id)); err != nil {
		return err
	}

	docKey := makeScopeKey(feedbackDocumentPrefix, fb.DocumentId, fb.Id)
	if err := tx.Set(docKey, storage.MarshalID(fb.Id)); err != nil {
		return err
	}

	if fb.ItemId != 0 {
		itmKey := makeScopeKey(feedbackItemPrefix, fb.ItemId, fb.Id)
		if err := tx.Set(itmKey, storage.MarshalID(fb.Id)); err != nil {
			return err
		}
	}
	return nil
}

// readFeedback reads a feedback record from the transaction.
func readFeedback(tx *badger.Txn, key []byte) (*core.AnalysisFeedback, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var fb *core.AnalysisFeedback
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		fb, unmarshalErr = storage.UnmarshalFeedback(val)
		return unmarshalErr
	})
	return fb, err
}
