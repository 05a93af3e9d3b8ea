package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB.
type ChatRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChatRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMessages appends one or more chat messages.
func (r *ChatRepository) AddMessages(ctx context.Context, messages ...*core.ChatMessage) ([]*core.ChatMessage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, msg := range messages {
			if msg.Id == 0 {
				nextID, err := nextSequenceID(r.idSeq)
				if err != nil {
					return err
				}
				msg.Id = nextID
			}

			msg.InsertedAt = time.Now().UTC()

			key := makeRecordKey(messagePrefix, msg.Id)
			if err := tx.Set(key, storage.MarshalChatMessage(msg)); err != nil {
				return err
			}

			// IDs are monotonic, so the project index is conversation-ordered
			prjKey := makeScopeKey(messageProjectPrefix, msg.ProjectId, msg.Id)
			if err := tx.Set(prjKey, storage.MarshalID(msg.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return messages, err
}

// GetRecentMessages retrieves the N most recent messages of a project,
// oldest first so they can be replayed as conversation history.
func (r *ChatRepository) GetRecentMessages(ctx context.Context, projectID core.ID, limit int) ([]*core.ChatMessage, error) {
	var results []*core.ChatMessage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanScope(tx, messageProjectPrefix, projectID, func(id core.ID) error {
			msg, err := readChatMessage(tx, makeRecordKey(messagePrefix, id))
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(results) > limit {
		results = results[len(results)-limit:]
	}

	return results, nil
}

// DeleteMessagesByProject clears a project's conversation.
func (r *ChatRepository) DeleteMessagesByProject(ctx context.Context, projectID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := deleteScope(tx, messageProjectPrefix, projectID, func(id core.ID) error {
			return tx.Delete(makeRecordKey(messagePrefix, id))
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readChatMessage reads a chat message from the transaction.
func readChatMessage(tx *badger.Txn, key []byte) (*core.ChatMessage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var msg *core.ChatMessage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		msg, unmarshalErr = storage.UnmarshalChatMessage(val)
		return unmarshalErr
	})
	return msg, err
}
