package jobs

import (
	"context"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// Queue dispatches project tasks to registered handlers.
//
// Two implementations exist: LocalQueue runs tasks on an in-process
// worker pool with no retry, for single-node deployments and tests;
// DurableQueue persists tasks and delivers them at-least-once with
// redelivery and a dead-letter set.
type Queue interface {
	// Send schedules the task kind for the project and returns a task ID.
	Send(ctx context.Context, kind string, projectID core.ID) (uint64, error)

	// Close stops dispatching and releases queue resources.
	Close() error
}

var (
	_ Queue = (*LocalQueue)(nil)
	_ Queue = (*DurableQueue)(nil)
)
