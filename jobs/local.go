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
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/panjf2000/ants/v2"
)

// LocalQueue runs tasks immediately on an in-process worker pool.
// Tasks are not persisted and are not retried; a handler failure is
// logged and the task is dropped. Suitable for single-node deployments
// where a crash loses at most the in-flight pipeline runs.
type LocalQueue struct {
	registry *Registry
	pool     *ants.Pool
	nextID   atomic.Uint64
	logger   *slog.Logger
}

// LocalOption configures a LocalQueue.
type LocalOption func(*LocalQueue) error

// WithPoolSize sets the worker pool size for concurrent task processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) LocalOption {
	return func(q *LocalQueue) error {
		if size < 1 {
			size = 1
		}

		if q.pool != nil {
			q.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		q.pool = pool
		return nil
	}
}

// WithLocalLogger sets a custom logger.
// Default is slog.Default().
func WithLocalLogger(logger *slog.Logger) LocalOption {
	return func(q *LocalQueue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewLocalQueue creates a queue running tasks on an in-process pool.
func NewLocalQueue(registry *Registry, opts ...LocalOption) (*LocalQueue, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	q := &LocalQueue{
		registry: registry,
		pool:     pool,
		logger:   slog.Default().With("component", "local-queue"),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			q.pool.Release()
			return nil, err
		}
	}

	return q, nil
}

// Send schedules the task for immediate execution on the pool.
// An unknown kind fails the Send rather than the task, so wiring
// mistakes surface to the caller instead of the logs.
func (q *LocalQueue) Send(ctx context.Context, kind string, projectID core.ID) (uint64, error) {
	handler, ok := q.registry.Handler(kind)
	if !ok {
		return 0, ErrUnknownKind
	}

	id := q.nextID.Add(1)
	err := q.pool.Submit(func() {
		// The submitting request's context ends with its caller; tasks
		// run on their own lifetime.
		if err := handler(context.Background(), projectID); err != nil {
			q.logger.Error("task failed",
				"kind", kind,
				"projectID", projectID,
				"taskID", id,
				"err", err)
		}
	})
	if err != nil {
		q.logger.Error("task rejected by pool", "kind", kind, "projectID", projectID, "err", err)
		return 0, err
	}

	q.logger.Debug("task scheduled", "kind", kind, "projectID", projectID, "taskID", id)
	return id, nil
}

// Close releases the worker pool after running tasks finish.
func (q *LocalQueue) Close() error {
	q.pool.Release()
	return nil
}
