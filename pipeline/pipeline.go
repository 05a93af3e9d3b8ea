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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jobs"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// Pipeline orchestrates the project setup stages. Stages run strictly
// sequentially because each depends on the previous stage's output; the
// first failure halts the remaining stages. A retriggered run restarts
// from the structure stage, which clears prior outputs first.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	sectionRepository  storage.SectionRepository
	itemRepository     storage.ItemRepository
	draftRepository    storage.DraftRepository
	chunkRepository    storage.ChunkRepository
	feedbackRepository storage.FeedbackRepository
	tracker            *jobs.Tracker
	generator          ai.Generator
	embedder           ai.Embedder
	projectOverrides   ai.Overrides
	userDefaults       ai.Overrides
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithModelOverrides sets the project-level and user-level model and prompt
// overrides consulted when resolving each stage's model.
func WithModelOverrides(projectOverrides, userDefaults ai.Overrides) Option {
	return func(p *Pipeline) error {
		p.projectOverrides = projectOverrides
		p.userDefaults = userDefaults
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// NewPipeline creates a new setup pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	sectionRepository storage.SectionRepository,
	itemRepository storage.ItemRepository,
	draftRepository storage.DraftRepository,
	chunkRepository storage.ChunkRepository,
	feedbackRepository storage.FeedbackRepository,
	tracker *jobs.Tracker,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if sectionRepository == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if draftRepository == nil {
		return nil, ErrDraftRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if feedbackRepository == nil {
		return nil, ErrFeedbackRepositoryRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		sectionRepository:  sectionRepository,
		itemRepository:     itemRepository,
		draftRepository:    draftRepository,
		chunkRepository:    chunkRepository,
		feedbackRepository: feedbackRepository,
		tracker:            tracker,
		generator:          provider.Generator(),
		embedder:           provider.Embedder(),
		logger:             slog.Default().With("component", "pipeline"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run executes the full setup pipeline for a project:
// structure analysis, item extraction, knowledge indexing, feedback
// extraction. The first stage failure aborts the run; later stages get no
// JobProgress row in that case.
func (p *Pipeline) Run(ctx context.Context, projectID core.ID) error {
	p.logger.Info("starting setup pipeline", "project_id", projectID)

	stages := []struct {
		name string
		run  func(context.Context, core.ID) error
	}{
		{"structure", p.RunStructure},
		{"extraction", p.RunExtraction},
		{"indexing", p.RunIndexing},
		{"feedback", p.RunFeedback},
	}
	for _, stage := range stages {
		if err := stage.run(ctx, projectID); err != nil {
			p.logger.Error("pipeline stage failed",
				"project_id", projectID, "stage", stage.name, "error", err)
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}

	p.logger.Info("setup pipeline completed", "project_id", projectID)
	return nil
}

// resolve returns the model and system prompt for one operation.
func (p *Pipeline) resolve(op ai.Operation) (ai.Model, string) {
	return ai.ResolveModel(op, p.projectOverrides, p.userDefaults),
		ai.ResolvePrompt(op, p.projectOverrides, p.userDefaults)
}

// fail records the stage failure on the job row and returns cause.
func (p *Pipeline) fail(ctx context.Context, job *core.JobProgress, cause error) error {
	if err := p.tracker.Fail(ctx, job, cause); err != nil {
		p.logger.Error("failed to record job failure", "job_id", job.Id, "error", err)
	}
	return cause
}
