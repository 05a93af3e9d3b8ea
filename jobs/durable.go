// Copyright 2025 Forecast Consulting
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// taskPayload is the JSON envelope persisted with each durable task.
type taskPayload struct {
	ProjectID core.ID `json:"projectId"`
}

// DurableQueue persists tasks in a QueueStore and delivers them
// at-least-once. A task is acked only after its handler succeeds;
// failures are redelivered with a growing delay until the attempt
// limit, then buried in the dead-letter set.
type DurableQueue struct {
	store    storage.QueueStore
	registry *Registry

	pollInterval time.Duration
	leaseFor     time.Duration
	batchSize    int
	maxAttempts  int
	retryDelay   time.Duration

	logger *slog.Logger
}

// DurableOption configures a DurableQueue.
type DurableOption func(*DurableQueue) error

// WithPollInterval sets how often the consumer polls for pending tasks.
// Default is 2 seconds.
func WithPollInterval(interval time.Duration) DurableOption {
	return func(q *DurableQueue) error {
		if interval <= 0 {
			return fmt.Errorf("poll interval must be positive")
		}
		q.pollInterval = interval
		return nil
	}
}

// WithLeaseDuration sets how long a claimed task stays invisible.
// A lease must outlast the slowest handler or the task is redelivered
// while still running. Default is 10 minutes.
func WithLeaseDuration(d time.Duration) DurableOption {
	return func(q *DurableQueue) error {
		if d <= 0 {
			return fmt.Errorf("lease duration must be positive")
		}
		q.leaseFor = d
		return nil
	}
}

// WithMaxAttempts sets how many deliveries a task gets before it is
// buried. Default is 5.
func WithMaxAttempts(n int) DurableOption {
	return func(q *DurableQueue) error {
		if n < 1 {
			return fmt.Errorf("max attempts must be at least 1")
		}
		q.maxAttempts = n
		return nil
	}
}

// WithRetryDelay sets the base redelivery delay; the actual delay is
// the base multiplied by the attempt count. Default is 30 seconds.
func WithRetryDelay(d time.Duration) DurableOption {
	return func(q *DurableQueue) error {
		if d < 0 {
			return fmt.Errorf("retry delay must not be negative")
		}
		q.retryDelay = d
		return nil
	}
}

// WithDurableLogger sets a custom logger.
// Default is slog.Default().
func WithDurableLogger(logger *slog.Logger) DurableOption {
	return func(q *DurableQueue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewDurableQueue creates a queue persisting tasks in store.
func NewDurableQueue(store storage.QueueStore, registry *Registry, opts ...DurableOption) (*DurableQueue, error) {
	if store == nil {
		return nil, ErrQueueStoreRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	q := &DurableQueue{
		store:        store,
		registry:     registry,
		pollInterval: 2 * time.Second,
		leaseFor:     10 * time.Minute,
		batchSize:    4,
		maxAttempts:  5,
		retryDelay:   30 * time.Second,
		logger:       slog.Default().With("component", "durable-queue"),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	return q, nil
}

// Send persists the task. It survives restarts and is picked up by the
// next Run loop, on this node or another sharing the store.
func (q *DurableQueue) Send(ctx context.Context, kind string, projectID core.ID) (uint64, error) {
	if _, ok := q.registry.Handler(kind); !ok {
		return 0, ErrUnknownKind
	}

	payload, err := json.Marshal(taskPayload{ProjectID: projectID})
	if err != nil {
		return 0, err
	}

	id, err := q.store.Enqueue(ctx, kind, payload)
	if err != nil {
		return 0, err
	}

	q.logger.Debug("task enqueued", "kind", kind, "projectID", projectID, "taskID", id)
	return id, nil
}

// Run consumes tasks until ctx is canceled. Run one consumer per
// process; concurrent consumers are safe but compete for leases.
func (q *DurableQueue) Run(ctx context.Context) error {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		if err := q.drain(ctx); err != nil {
			q.logger.Error("error draining queue", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain leases and processes batches until the pending set is empty.
func (q *DurableQueue) drain(ctx context.Context) error {
	for {
		tasks, err := q.store.Lease(ctx, time.Now().UTC(), q.leaseFor, q.batchSize)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		for _, task := range tasks {
			q.process(ctx, task)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// process runs one leased task and settles it: ack on success, retry
// with delay on failure, bury once the attempt limit is reached.
func (q *DurableQueue) process(ctx context.Context, task *storage.QueueTask) {
	settle := func(err error) {
		if err != nil {
			q.logger.Error("error settling task", "taskID", task.Id, "err", err)
		}
	}

	handler, ok := q.registry.Handler(task.Kind)
	if !ok {
		// No handler can ever succeed; retrying would loop forever.
		q.logger.Error("burying task with unknown kind", "taskID", task.Id, "kind", task.Kind)
		settle(q.store.Bury(ctx, task.Id, ErrUnknownKind.Error()))
		return
	}

	var payload taskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		q.logger.Error("burying task with malformed payload", "taskID", task.Id, "err", err)
		settle(q.store.Bury(ctx, task.Id, fmt.Sprintf("malformed payload: %v", err)))
		return
	}

	err := handler(ctx, payload.ProjectID)
	if err == nil {
		settle(q.store.Ack(ctx, task.Id))
		return
	}

	// Attempts counts deliveries so far; this failure consumed one more.
	attempts := task.Attempts + 1
	if attempts >= q.maxAttempts {
		q.logger.Error("task exhausted attempts",
			"taskID", task.Id,
			"kind", task.Kind,
			"attempts", attempts,
			"err", err)
		settle(q.store.Bury(ctx, task.Id, err.Error()))
		return
	}

	delay := q.retryDelay * time.Duration(attempts)
	q.logger.Warn("task failed, scheduling retry",
		"taskID", task.Id,
		"kind", task.Kind,
		"attempts", attempts,
		"delay", delay,
		"err", err)
	settle(q.store.Retry(ctx, task.Id, time.Now().UTC().Add(delay)))
}

// Close releases the underlying store.
func (q *DurableQueue) Close() error {
	return q.store.Close()
}
