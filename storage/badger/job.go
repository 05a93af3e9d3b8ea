package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(jobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddJob persists a new job row.
func (r *JobRepository) AddJob(ctx context.Context, job *core.JobProgress) (*core.JobProgress, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if job.Id == 0 {
			nextID, err := nextSequenceID(r.idSeq)
			if err != nil {
				return err
			}
			job.Id = nextID
		}
		if job.StartedAt.IsZero() {
			job.StartedAt = time.Now().UTC()
		}

		key := makeRecordKey(jobPrefix, job.Id)
		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}

		// IDs are monotonic, so the project index is also insertion-ordered
		prjKey := makeScopeKey(jobProjectPrefix, job.ProjectId, job.Id)
		if err := tx.Set(prjKey, storage.MarshalID(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// UpdateJob persists the current state of a job row.
func (r *JobRepository) UpdateJob(ctx context.Context, job *core.JobProgress) (*core.JobProgress, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(jobPrefix, job.Id)

		old, err := readJob(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a single job row by ID.
func (r *JobRepository) GetJob(ctx context.Context, id core.ID) (*core.JobProgress, error) {
	var result *core.JobProgress
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readJob(tx, makeRecordKey(jobPrefix, id))
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

// GetJobsByProject retrieves a project's job rows, newest first.
func (r *JobRepository) GetJobsByProject(ctx context.Context, projectID core.ID) ([]*core.JobProgress, error) {
	var results []*core.JobProgress
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, jobProjectPrefix, projectID, func(id core.ID) error {
			job, err := readJob(tx, makeRecordKey(jobPrefix, id))
			if err != nil {
				return err
			}
			if job != nil {
				results = append(results, job)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// scanScope yields ascending IDs; reverse for newest first
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	return results, nil
}

// GetLatestJob retrieves a project's most recent job of the given type.
func (r *JobRepository) GetLatestJob(ctx context.Context, projectID core.ID, jobType core.JobType) (*core.JobProgress, error) {
	jobs, err := r.GetJobsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if job.Type == jobType {
			return job, nil
		}
	}
	return nil, storage.ErrNotFound
}

// readJob reads a job row from the transaction.
func readJob(tx *badger.Txn, key []byte) (*core.JobProgress, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.JobProgress
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalJob(val)
		return unmarshalErr
	})
	return job, err
}
