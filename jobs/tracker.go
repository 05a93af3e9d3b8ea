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
	"errors"
	"log/slog"
	"time"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// Tracker records the lifecycle of background jobs as JobProgress rows.
// Progress never moves backwards and terminal rows are never reopened,
// so pollers observing a row see a monotonic history.
type Tracker struct {
	jobRepository storage.JobRepository
	logger        *slog.Logger
}

// NewTracker creates a new job progress tracker.
func NewTracker(jobRepository storage.JobRepository) (*Tracker, error) {
	if jobRepository == nil {
		return nil, ErrJobRepositoryRequired
	}
	return &Tracker{
		jobRepository: jobRepository,
		logger:        slog.Default().With("component", "job-tracker"),
	}, nil
}

// Begin creates a processing job row at progress 0.
func (t *Tracker) Begin(ctx context.Context, projectID core.ID, jobType core.JobType, message string) (*core.JobProgress, error) {
	job := &core.JobProgress{
		ProjectId: projectID,
		Type:      jobType,
		Status:    core.JobStatusProcessing,
		Progress:  0,
		Message:   message,
		StartedAt: time.Now().UTC(),
	}
	return t.jobRepository.AddJob(ctx, job)
}

// Update advances a job's progress and message. Progress lower than the
// current value is clamped; updates to terminal jobs are rejected.
func (t *Tracker) Update(ctx context.Context, job *core.JobProgress, progress int, message string) error {
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}
	if progress < job.Progress {
		progress = job.Progress
	}
	if progress > 100 {
		progress = 100
	}

	job.Progress = progress
	if message != "" {
		job.Message = message
	}
	_, err := t.jobRepository.UpdateJob(ctx, job)
	return err
}

// Complete marks a job completed at progress 100.
func (t *Tracker) Complete(ctx context.Context, job *core.JobProgress, message string) error {
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	job.Status = core.JobStatusCompleted
	job.Progress = 100
	if message != "" {
		job.Message = message
	}
	job.CompletedAt = time.Now().UTC()
	_, err := t.jobRepository.UpdateJob(ctx, job)
	return err
}

// Fail marks a job errored, keeping the progress it reached.
func (t *Tracker) Fail(ctx context.Context, job *core.JobProgress, cause error) error {
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	job.Status = core.JobStatusError
	if cause != nil {
		job.ErrorMessage = cause.Error()
	}
	job.CompletedAt = time.Now().UTC()
	_, err := t.jobRepository.UpdateJob(ctx, job)
	return err
}

// Latest reports a project's most recent job of the given type, or nil
// if none has run yet.
func (t *Tracker) Latest(ctx context.Context, projectID core.ID, jobType core.JobType) (*core.JobProgress, error) {
	job, err := t.jobRepository.GetLatestJob(ctx, projectID, jobType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}
