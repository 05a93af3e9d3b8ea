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


package drafting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jobs"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// Service generates response text for draft groups. Each generation
// snapshots the result as an immutable ResponseDraft version and promotes
// the section's pending items to drafted.
type Service struct {
	draftRepository   storage.DraftRepository
	sectionRepository storage.SectionRepository
	itemRepository    storage.ItemRepository
	generator         ai.Generator
	assembler         *ContextAssembler
	tracker           *jobs.Tracker
	projectOverrides  ai.Overrides
	userDefaults      ai.Overrides
	logger            *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithModelOverrides sets the project-level and user-level model overrides
// consulted when a draft group does not pin a model itself.
func WithModelOverrides(projectOverrides, userDefaults ai.Overrides) Option {
	return func(s *Service) error {
		s.projectOverrides = projectOverrides
		s.userDefaults = userDefaults
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "drafting")
		return nil
	}
}

// NewService creates a new drafting service.
func NewService(
	draftRepository storage.DraftRepository,
	sectionRepository storage.SectionRepository,
	itemRepository storage.ItemRepository,
	generator ai.Generator,
	assembler *ContextAssembler,
	tracker *jobs.Tracker,
	opts ...Option,
) (*Service, error) {
	if draftRepository == nil {
		return nil, ErrDraftRepositoryRequired
	}
	if sectionRepository == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if assembler == nil {
		return nil, ErrAssemblerRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	s := &Service{
		draftRepository:   draftRepository,
		sectionRepository: sectionRepository,
		itemRepository:    itemRepository,
		generator:         generator,
		assembler:         assembler,
		tracker:           tracker,
		logger:            slog.Default().With("component", "drafting"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Generate produces the response text for one draft group, streaming output
// tokens through onToken (which may be nil). The group moves to generating
// for the duration of the call, then to drafted on success with a version
// snapshot appended; on failure it is reset to pending.
func (s *Service) Generate(ctx context.Context, groupID core.ID, onToken ai.TokenFunc) (*core.DraftGroup, error) {
	group, err := s.draftRepository.GetDraftGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("loading draft group: %w", err)
	}
	section, err := s.sectionRepository.GetSection(ctx, group.SectionId)
	if err != nil {
		return nil, fmt.Errorf("loading section: %w", err)
	}

	group.Status = core.DraftStatusGenerating
	if _, err := s.draftRepository.UpdateDraftGroups(ctx, group); err != nil {
		return nil, fmt.Errorf("marking group generating: %w", err)
	}

	text, model, systemPrompt, err := s.generate(ctx, group, section, onToken)
	if err != nil {
		group.Status = core.DraftStatusPending
		if _, resetErr := s.draftRepository.UpdateDraftGroups(ctx, group); resetErr != nil {
			s.logger.Error("failed to reset group after generation error",
				"group_id", group.Id, "error", resetErr)
		}
		return nil, err
	}

	group.GeneratedText = text
	group.Status = core.DraftStatusDrafted
	if _, err := s.draftRepository.UpdateDraftGroups(ctx, group); err != nil {
		return nil, fmt.Errorf("saving generated draft: %w", err)
	}

	if _, err := s.draftRepository.AddDraftVersion(ctx, &core.ResponseDraft{
		GroupId:    group.Id,
		Content:    text,
		ModelUsed:  model.Id,
		PromptUsed: systemPrompt,
	}); err != nil {
		s.logger.Error("failed to snapshot draft version",
			"group_id", group.Id, "error", err)
	}

	if err := s.promoteItems(ctx, section.Id); err != nil {
		s.logger.Error("failed to promote section items",
			"section_id", section.Id, "error", err)
	}

	return group, nil
}

// generate assembles the prompts and runs the model. It returns the full
// text along with the model and system prompt used, for version snapshots.
func (s *Service) generate(
	ctx context.Context,
	group *core.DraftGroup,
	section *core.OutlineSection,
	onToken ai.TokenFunc,
) (string, ai.Model, string, error) {
	draftContext, err := s.assembler.Assemble(ctx, group.ProjectId, group.SectionId)
	if err != nil {
		return "", ai.Model{}, "", fmt.Errorf("assembling draft context: %w", err)
	}

	model := s.resolveModel(group)

	systemPrompt := group.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = ai.ResolvePrompt(ai.OperationDrafting, s.projectOverrides, s.userDefaults)
	}
	if draftContext != "" {
		systemPrompt += "\n\n" + draftContext
	}
	userPrompt := fmt.Sprintf("Redigez la section %q: %s", section.Title, section.Description)

	text, err := s.generator.Stream(ctx, model, systemPrompt, userPrompt, onToken)
	if err != nil {
		return "", ai.Model{}, "", fmt.Errorf("generating draft: %w", err)
	}
	return text, model, systemPrompt, nil
}

// resolveModel honors the model pinned on the group when it names a
// registered model, otherwise resolves through the override chain.
func (s *Service) resolveModel(group *core.DraftGroup) ai.Model {
	if group.ModelId != "" {
		if m, ok := ai.ModelById(group.ModelId); ok {
			return m
		}
		s.logger.Warn("group pins unknown model, resolving default",
			"group_id", group.Id, "model_id", group.ModelId)
	}
	return ai.ResolveModel(ai.OperationDrafting, s.projectOverrides, s.userDefaults)
}

// promoteItems moves a section's pending items to drafted.
func (s *Service) promoteItems(ctx context.Context, sectionID core.ID) error {
	items, err := s.itemRepository.GetItemsBySection(ctx, sectionID)
	if err != nil {
		return err
	}
	var changed []*core.ExtractedItem
	for _, item := range items {
		if item.Status == core.ItemStatusPending {
			item.Status = core.ItemStatusDrafted
			changed = append(changed, item)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	_, err = s.itemRepository.UpdateItems(ctx, changed...)
	return err
}

// DraftAll generates every pending draft group of a project sequentially in
// section order, tracking progress as a JobProgress row. The first failed
// section fails the job; groups already drafted are left untouched.
func (s *Service) DraftAll(ctx context.Context, projectID core.ID) error {
	job, err := s.tracker.Begin(ctx, projectID, core.JobTypeDraftAll, "Rédaction automatique des sections...")
	if err != nil {
		return fmt.Errorf("starting draft-all job: %w", err)
	}

	pending, titles, err := s.pendingGroups(ctx, projectID)
	if err != nil {
		if failErr := s.tracker.Fail(ctx, job, err); failErr != nil {
			s.logger.Error("failed to record job failure", "job_id", job.Id, "error", failErr)
		}
		return err
	}
	if len(pending) == 0 {
		return s.tracker.Complete(ctx, job, "Aucune section en attente de rédaction")
	}

	for i, group := range pending {
		if err := s.tracker.Update(ctx, job, i*100/len(pending),
			fmt.Sprintf("Rédaction: %s...", titles[i])); err != nil {
			s.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
		}
		if _, err := s.Generate(ctx, group.Id, nil); err != nil {
			if failErr := s.tracker.Fail(ctx, job, err); failErr != nil {
				s.logger.Error("failed to record job failure", "job_id", job.Id, "error", failErr)
			}
			return err
		}
	}

	return s.tracker.Complete(ctx, job, fmt.Sprintf("%d sections rédigées", len(pending)))
}

// pendingGroups lists a project's pending draft groups in section order,
// paired with their section titles for progress messages.
func (s *Service) pendingGroups(ctx context.Context, projectID core.ID) ([]*core.DraftGroup, []string, error) {
	groups, err := s.draftRepository.GetDraftGroupsByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading draft groups: %w", err)
	}
	bySection := make(map[core.ID]*core.DraftGroup, len(groups))
	for _, group := range groups {
		if group.Status == core.DraftStatusPending {
			bySection[group.SectionId] = group
		}
	}

	sections, err := s.sectionRepository.GetSectionsByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading sections: %w", err)
	}

	var pending []*core.DraftGroup
	var titles []string
	for _, section := range sections {
		if group, ok := bySection[section.Id]; ok {
			pending = append(pending, group)
			titles = append(titles, section.Title)
		}
	}
	return pending, titles, nil
}
