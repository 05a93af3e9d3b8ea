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


package reponsia

import (
	"context"
	"log/slog"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai/langchain"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/chat"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/compliance"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/drafting"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jobs"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/pipeline"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/search"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
)

// Task kinds dispatched through the workspace queue.
const (
	// TaskSetup runs the full setup pipeline for a project.
	TaskSetup = "setup"
	// TaskDraftAll generates every pending draft group of a project.
	TaskDraftAll = "draft-all"
)

// Workspace aggregates the storage backend, the AI provider, and every
// service of the system behind one open/close lifecycle. It is the
// single entry point embedders and the CLI wire against.
type Workspace struct {
	repos      *badger.Repositories
	provider   ai.Provider
	tracker    *jobs.Tracker
	registry   *jobs.Registry
	queue      jobs.Queue
	retriever  *search.Retriever
	pipeline   *pipeline.Pipeline
	drafting   *drafting.Service
	compliance *compliance.Service
	chat       *chat.Service
	logger     *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig         *ai.Config
	provider         ai.Provider
	projectOverrides ai.Overrides
	userDefaults     ai.Overrides
	durable          bool
	logger           *slog.Logger
}

// WithAIConfig sets the vendor credentials and endpoints used to build
// the AI provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready-made AI provider instead of building one
// from configuration. The workspace takes ownership and closes it.
func WithProvider(provider ai.Provider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithModelOverrides sets the project-level and user-level model and
// prompt overrides applied across every service.
func WithModelOverrides(projectOverrides, userDefaults ai.Overrides) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.projectOverrides = projectOverrides
		o.userDefaults = userDefaults
	}
}

// WithDurableQueue persists queued tasks in the storage backend for
// at-least-once delivery across restarts. Default is the in-process
// queue. The caller must run the queue's consumer loop, see RunQueue.
func WithDurableQueue() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.durable = true
	}
}

// WithWorkspaceLogger sets a custom logger.
// Default is slog.Default().
func WithWorkspaceLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens the workspace database at path and wires every service
// against it. Caller must Close when done.
func Open(path string, opts ...WorkspaceOption) (*Workspace, error) {
	// Apply options
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repos, err := badger.NewRepositories(path)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = langchain.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	w, err := wire(repos, provider, options)
	if err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}
	return w, nil
}

// wire builds every service on the opened backend and provider.
func wire(repos *badger.Repositories, provider ai.Provider, options *workspaceOptions) (*Workspace, error) {
	tracker, err := jobs.NewTracker(repos.Jobs)
	if err != nil {
		return nil, err
	}

	retriever, err := search.NewRetriever(repos.Chunks, provider.Embedder(),
		search.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	setupPipeline, err := pipeline.NewPipeline(
		repos.Documents, repos.Sections, repos.Items, repos.Drafts,
		repos.Chunks, repos.Feedback, tracker, provider,
		pipeline.WithModelOverrides(options.projectOverrides, options.userDefaults),
		pipeline.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	assembler, err := drafting.NewContextAssembler(repos.Items, repos.Feedback, retriever)
	if err != nil {
		return nil, err
	}
	draftingService, err := drafting.NewService(
		repos.Drafts, repos.Sections, repos.Items,
		provider.Generator(), assembler, tracker,
		drafting.WithModelOverrides(options.projectOverrides, options.userDefaults),
		drafting.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	complianceService, err := compliance.NewService(
		repos.Items, repos.Drafts, repos.Feedback, provider.Generator(),
		compliance.WithModelOverrides(options.projectOverrides, options.userDefaults),
		compliance.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	chatService, err := chat.NewService(
		repos.Chat, repos.Items, provider.Generator(), retriever,
		chat.WithModelOverrides(options.projectOverrides, options.userDefaults),
		chat.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	registry := jobs.NewRegistry()
	if err := registry.Register(TaskSetup, setupPipeline.Run); err != nil {
		return nil, err
	}
	if err := registry.Register(TaskDraftAll, draftingService.DraftAll); err != nil {
		return nil, err
	}

	var queue jobs.Queue
	if options.durable {
		queue, err = jobs.NewDurableQueue(repos.Queue, registry,
			jobs.WithDurableLogger(options.logger))
	} else {
		queue, err = jobs.NewLocalQueue(registry,
			jobs.WithLocalLogger(options.logger))
	}
	if err != nil {
		return nil, err
	}

	return &Workspace{
		repos:      repos,
		provider:   provider,
		tracker:    tracker,
		registry:   registry,
		queue:      queue,
		retriever:  retriever,
		pipeline:   setupPipeline,
		drafting:   draftingService,
		compliance: complianceService,
		chat:       chatService,
		logger:     options.logger,
	}, nil
}

// Close stops the queue, then releases the AI provider and the storage
// backend.
func (w *Workspace) Close() error {
	if err := w.queue.Close(); err != nil {
		w.logger.Error("error closing queue", "err", err)
	}
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}
	if err := w.repos.Close(); err != nil {
		w.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// Repositories exposes the storage layer.
func (w *Workspace) Repositories() *badger.Repositories {
	return w.repos
}

// Provider exposes the AI provider.
func (w *Workspace) Provider() ai.Provider {
	return w.provider
}

// Tracker exposes the job progress tracker.
func (w *Workspace) Tracker() *jobs.Tracker {
	return w.tracker
}

// Queue exposes the task queue.
func (w *Workspace) Queue() jobs.Queue {
	return w.queue
}

// Retriever exposes the knowledge-base retriever.
func (w *Workspace) Retriever() *search.Retriever {
	return w.retriever
}

// Pipeline exposes the setup pipeline.
func (w *Workspace) Pipeline() *pipeline.Pipeline {
	return w.pipeline
}

// Drafting exposes the draft generation service.
func (w *Workspace) Drafting() *drafting.Service {
	return w.drafting
}

// Compliance exposes the compliance reporting service.
func (w *Workspace) Compliance() *compliance.Service {
	return w.compliance
}

// Chat exposes the project assistant.
func (w *Workspace) Chat() *chat.Service {
	return w.chat
}

// EnqueueSetup schedules the setup pipeline for a project.
func (w *Workspace) EnqueueSetup(ctx context.Context, projectID core.ID) (uint64, error) {
	return w.queue.Send(ctx, TaskSetup, projectID)
}

// EnqueueDraftAll schedules draft generation for every pending group of
// a project.
func (w *Workspace) EnqueueDraftAll(ctx context.Context, projectID core.ID) (uint64, error) {
	return w.queue.Send(ctx, TaskDraftAll, projectID)
}

// RunQueue runs the durable queue's consumer loop until ctx is canceled.
// It is a no-op returning nil for the in-process queue, whose tasks run
// as they are sent.
func (w *Workspace) RunQueue(ctx context.Context) error {
	durable, ok := w.queue.(*jobs.DurableQueue)
	if !ok {
		return nil
	}
	return durable.Run(ctx)
}
