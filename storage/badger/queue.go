package badger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// QueueStore implements storage.QueueStore for BadgerDB.
// Pending and leased tasks live in time-ordered index sets; an expired
// lease is reclaimed into the pending set on the next Lease call.
type QueueStore struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.QueueStore = (*QueueStore)(nil)

// taskRecord is the persisted form of a queue task plus its lease state.
type taskRecord struct {
	Task        storage.QueueTask
	LeaseExpiry time.Time
	DeadReason  string
}

// NewQueueStore creates a new QueueStore.
func NewQueueStore(backend *Backend) (*QueueStore, error) {
	idSeq, err := backend.GetSequence(queueIDSeq)
	if err != nil {
		return nil, err
	}

	return &QueueStore{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (s *QueueStore) Close() error {
	return s.idSeq.Release()
}

// Enqueue persists a new task and returns its assigned ID.
func (s *QueueStore) Enqueue(ctx context.Context, kind string, payload []byte) (uint64, error) {
	id, err := nextSequenceID(s.idSeq)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	record := &taskRecord{
		Task: storage.QueueTask{
			Id:         uint64(id),
			Kind:       kind,
			Payload:    payload,
			NotBefore:  now,
			EnqueuedAt: now,
		},
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := writeTaskRecord(tx, record); err != nil {
			return err
		}
		pendingKey := makeQueueTimeKey(queuePendingPrefix, record.Task.NotBefore, record.Task.Id)
		if err := tx.Set(pendingKey, nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return record.Task.Id, nil
}

// Lease atomically claims up to limit pending tasks whose NotBefore has
// passed. Expired leases are reclaimed first.
func (s *QueueStore) Lease(ctx context.Context, now time.Time, leaseFor time.Duration, limit int) ([]*storage.QueueTask, error) {
	var leased []*storage.QueueTask

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := reclaimExpiredLeases(tx, now); err != nil {
			return err
		}

		horizon := makeQueueTimeKey(queuePendingPrefix, now, ^uint64(0))
		prefix := []byte(queuePendingPrefix + ":")

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var claimKeys [][]byte
		for iter.Rewind(); iter.Valid() && len(claimKeys) < limit; iter.Next() {
			key := iter.Item().KeyCopy(nil)
			// Keys are time-ordered; stop at the first future task
			if string(key) > string(horizon) {
				break
			}
			claimKeys = append(claimKeys, key)
		}
		iter.Close()

		for _, key := range claimKeys {
			id := queueKeyTaskID(key)
			record, err := readTaskRecord(tx, id)
			if err != nil {
				return err
			}
			if record == nil {
				// Orphaned index entry
				if err := tx.Delete(key); err != nil {
					return err
				}
				continue
			}

			if err := tx.Delete(key); err != nil {
				return err
			}

			record.LeaseExpiry = now.Add(leaseFor)
			if err := writeTaskRecord(tx, record); err != nil {
				return err
			}
			leaseKey := makeQueueTimeKey(queueLeasedPrefix, record.LeaseExpiry, record.Task.Id)
			if err := tx.Set(leaseKey, nil); err != nil {
				return err
			}

			task := record.Task
			leased = append(leased, &task)
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return leased, nil
}

// Ack removes a completed task permanently.
func (s *QueueStore) Ack(ctx context.Context, id uint64) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readTaskRecord(tx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.LeaseExpiry.IsZero() {
			return storage.ErrTaskNotLeased
		}

		leaseKey := makeQueueTimeKey(queueLeasedPrefix, record.LeaseExpiry, id)
		if err := tx.Delete(leaseKey); err != nil {
			return err
		}
		if err := tx.Delete(makeQueueTaskKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Retry returns a failed task to the pending set with an incremented
// attempt count, delayed until notBefore.
func (s *QueueStore) Retry(ctx context.Context, id uint64, notBefore time.Time) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readTaskRecord(tx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.LeaseExpiry.IsZero() {
			return storage.ErrTaskNotLeased
		}

		leaseKey := makeQueueTimeKey(queueLeasedPrefix, record.LeaseExpiry, id)
		if err := tx.Delete(leaseKey); err != nil {
			return err
		}

		record.LeaseExpiry = time.Time{}
		record.Task.Attempts++
		record.Task.NotBefore = notBefore
		if err := writeTaskRecord(tx, record); err != nil {
			return err
		}

		pendingKey := makeQueueTimeKey(queuePendingPrefix, notBefore, id)
		if err := tx.Set(pendingKey, nil); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Bury moves a task to the dead-letter set, out of delivery rotation.
func (s *QueueStore) Bury(ctx context.Context, id uint64, reason string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readTaskRecord(tx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		if !record.LeaseExpiry.IsZero() {
			leaseKey := makeQueueTimeKey(queueLeasedPrefix, record.LeaseExpiry, id)
			if err := tx.Delete(leaseKey); err != nil {
				return err
			}
		} else {
			pendingKey := makeQueueTimeKey(queuePendingPrefix, record.Task.NotBefore, id)
			if err := tx.Delete(pendingKey); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeQueueTaskKey(id)); err != nil {
			return err
		}

		record.LeaseExpiry = time.Time{}
		record.DeadReason = reason
		value, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := tx.Set(makeQueueDeadKey(id), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeadLetters lists buried tasks for inspection.
func (s *QueueStore) DeadLetters(ctx context.Context) ([]*storage.QueueTask, error) {
	var results []*storage.QueueTask
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(queueDeadPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record taskRecord
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			task := record.Task
			results = append(results, &task)
		}
		return nil
	}, false)
	return results, err
}

// Helper methods

// reclaimExpiredLeases moves tasks with expired leases back to pending.
func reclaimExpiredLeases(tx *badger.Txn, now time.Time) error {
	horizon := makeQueueTimeKey(queueLeasedPrefix, now, ^uint64(0))
	prefix := []byte(queueLeasedPrefix + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var expiredKeys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().KeyCopy(nil)
		if string(key) > string(horizon) {
			break
		}
		expiredKeys = append(expiredKeys, key)
	}
	iter.Close()

	for _, key := range expiredKeys {
		id := queueKeyTaskID(key)
		record, err := readTaskRecord(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		if record == nil {
			continue
		}

		record.LeaseExpiry = time.Time{}
		record.Task.Attempts++
		record.Task.NotBefore = now
		if err := writeTaskRecord(tx, record); err != nil {
			return err
		}
		pendingKey := makeQueueTimeKey(queuePendingPrefix, now, id)
		if err := tx.Set(pendingKey, nil); err != nil {
			return err
		}
	}
	return nil
}

// queueKeyTaskID extracts the task ID from the tail of a time-ordered key.
func queueKeyTaskID(key []byte) uint64 {
	var id uint64
	for _, b := range key[len(key)-8:] {
		id = id<<8 | uint64(b)
	}
	return id
}

// writeTaskRecord stores a task record at its primary key.
func writeTaskRecord(tx *badger.Txn, record *taskRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return tx.Set(makeQueueTaskKey(record.Task.Id), value)
}

// readTaskRecord reads a task record from the transaction.
func readTaskRecord(tx *badger.Txn, id uint64) (*taskRecord, error) {
	item, err := tx.Get(makeQueueTaskKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record taskRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
