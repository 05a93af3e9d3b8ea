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


package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jsonx"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// warningExcerptMax bounds the item or feedback text quoted in a warning.
const warningExcerptMax = 100

// Warning flags a gap in the project's response coverage.
type Warning struct {
	ItemId   core.ID // linked extracted item, 0 when none
	Message  string
	Severity core.Severity
}

// Stats are the deterministic counts behind a report.
type Stats struct {
	TotalItems         int
	Questions          int
	Conditions         int
	AddressedItems     int
	PendingItems       int
	DraftGroupsTotal   int
	DraftGroupsDrafted int
	FeedbackTotal      int
	FeedbackAddressed  int
}

// Report is the compliance assessment of one project.
type Report struct {
	QualityScore    int
	CoveragePercent int
	Summary         string
	Warnings        []Warning
	Stats           Stats
}

// Service computes compliance reports. The statistics and warnings are
// deterministic; an optional model pass may refine the quality score and
// summary but never blocks the report.
type Service struct {
	itemRepository     storage.ItemRepository
	draftRepository    storage.DraftRepository
	feedbackRepository storage.FeedbackRepository
	generator          ai.Generator
	projectOverrides   ai.Overrides
	userDefaults       ai.Overrides
	logger             *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithModelOverrides sets the model and prompt overrides for the AI pass.
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
		s.logger = logger.With("component", "compliance")
		return nil
	}
}

// NewService creates a new compliance service. generator may be nil, in
// which case reports are purely deterministic.
func NewService(
	itemRepository storage.ItemRepository,
	draftRepository storage.DraftRepository,
	feedbackRepository storage.FeedbackRepository,
	generator ai.Generator,
	opts ...Option,
) (*Service, error) {
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if draftRepository == nil {
		return nil, ErrDraftRepositoryRequired
	}
	if feedbackRepository == nil {
		return nil, ErrFeedbackRepositoryRequired
	}

	s := &Service{
		itemRepository:     itemRepository,
		draftRepository:    draftRepository,
		feedbackRepository: feedbackRepository,
		generator:          generator,
		logger:             slog.Default().With("component", "compliance"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// GenerateReport assesses a project's response coverage.
func (s *Service) GenerateReport(ctx context.Context, projectID core.ID) (*Report, error) {
	items, err := s.itemRepository.GetItemsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	groups, err := s.draftRepository.GetDraftGroupsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading draft groups: %w", err)
	}
	feedback, err := s.feedbackRepository.GetFeedbackByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}

	stats := computeStats(items, groups, feedback)
	coverage := coveragePercent(stats.AddressedItems, stats.TotalItems)

	report := &Report{
		QualityScore:    coverage,
		CoveragePercent: coverage,
		Summary: fmt.Sprintf("%d/%d elements traites (%d%% couverture), %d/%d sections redigees",
			stats.AddressedItems, stats.TotalItems, coverage,
			stats.DraftGroupsDrafted, stats.DraftGroupsTotal),
		Warnings: buildWarnings(items, groups, feedback),
		Stats:    stats,
	}

	if s.generator != nil && stats.AddressedItems > 0 {
		s.refineWithModel(ctx, report, items, feedback)
	}

	return report, nil
}

// coveragePercent is addressed/total as a rounded percentage, 0 for an
// empty project.
func coveragePercent(addressed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(addressed) / float64(total) * 100))
}

func computeStats(items []*core.ExtractedItem, groups []*core.DraftGroup, feedback []*core.AnalysisFeedback) Stats {
	stats := Stats{
		TotalItems:       len(items),
		DraftGroupsTotal: len(groups),
		FeedbackTotal:    len(feedback),
	}
	for _, item := range items {
		switch item.Kind {
		case core.ItemKindQuestion:
			stats.Questions++
		case core.ItemKindCondition:
			stats.Conditions++
		}
		if item.Addressed {
			stats.AddressedItems++
		}
	}
	stats.PendingItems = stats.TotalItems - stats.AddressedItems

	for _, group := range groups {
		if group.Status != core.DraftStatusPending && group.Status != core.DraftStatusGenerating {
			stats.DraftGroupsDrafted++
		}
	}
	for _, f := range feedback {
		if f.Addressed {
			stats.FeedbackAddressed++
		}
	}
	return stats
}

func buildWarnings(items []*core.ExtractedItem, groups []*core.DraftGroup, feedback []*core.AnalysisFeedback) []Warning {
	var warnings []Warning

	for _, item := range items {
		if item.Kind == core.ItemKindQuestion && !item.Addressed {
			warnings = append(warnings, Warning{
				ItemId:   item.Id,
				Message:  fmt.Sprintf("Question non traitee: %s %s", item.SectionRef, excerpt(item.OriginalText)),
				Severity: core.SeverityCritical,
			})
		}
	}
	for _, item := range items {
		if item.Kind == core.ItemKindCondition && !item.Addressed {
			warnings = append(warnings, Warning{
				ItemId:   item.Id,
				Message:  fmt.Sprintf("Condition non verifiee: %s", excerpt(item.OriginalText)),
				Severity: core.SeverityMajor,
			})
		}
	}
	for _, f := range feedback {
		if !f.Addressed && (f.Severity == core.SeverityCritical || f.Severity == core.SeverityMajor) {
			warnings = append(warnings, Warning{
				ItemId:   f.ItemId,
				Message:  fmt.Sprintf("Retour %s non adresse: %s...", f.Severity, excerpt(f.Content)),
				Severity: f.Severity,
			})
		}
	}
	for _, group := range groups {
		if group.Status == core.DraftStatusPending {
			warnings = append(warnings, Warning{
				Message:  fmt.Sprintf("Section non redigee (draft group #%d)", group.Id),
				Severity: core.SeverityMajor,
			})
		}
	}

	return warnings
}

// aiReport is the JSON shape the compliance prompt asks for.
type aiReport struct {
	QualityScore *int   `json:"qualityScore"`
	Summary      string `json:"summary"`
	Warnings     []struct {
		RequirementId core.ID `json:"requirementId"`
		Message       string  `json:"message"`
		Severity      string  `json:"severity"`
	} `json:"warnings"`
}

// refineWithModel runs the holistic quality pass. Any failure keeps the
// deterministic report untouched.
func (s *Service) refineWithModel(ctx context.Context, report *Report, items []*core.ExtractedItem, feedback []*core.AnalysisFeedback) {
	model := ai.ResolveModel(ai.OperationCompliance, s.projectOverrides, s.userDefaults)
	systemPrompt := ai.ResolvePrompt(ai.OperationCompliance, s.projectOverrides, s.userDefaults)

	response, err := s.generator.Generate(ctx, model, systemPrompt, complianceInput(items, feedback))
	if err != nil {
		s.logger.Warn("AI compliance check failed, keeping deterministic report", "error", err)
		return
	}

	parsed, err := jsonx.Decode[aiReport](response)
	if err != nil {
		s.logger.Warn("AI compliance response not parseable, keeping deterministic report", "error", err)
		return
	}

	if parsed.QualityScore != nil {
		report.QualityScore = *parsed.QualityScore
	}
	if parsed.Summary != "" {
		report.Summary = parsed.Summary
	}
	for _, w := range parsed.Warnings {
		report.Warnings = append(report.Warnings, Warning{
			ItemId:   w.RequirementId,
			Message:  w.Message,
			Severity: parseSeverity(w.Severity),
		})
	}
}

// complianceInput summarizes the project state for the model.
func complianceInput(items []*core.ExtractedItem, feedback []*core.AnalysisFeedback) string {
	var b strings.Builder
	b.WriteString("Elements extraits:\n")
	for _, item := range items {
		kind := "question"
		if item.Kind == core.ItemKindCondition {
			kind = "condition"
		}
		ref := item.SectionRef
		if ref == "" {
			ref = "?"
		}
		state := "en attente"
		if item.Addressed {
			state = "traite"
		}
		fmt.Fprintf(&b, "[%s] %s: %s (%s)\n", kind, ref, excerptN(item.OriginalText, 200), state)
	}

	b.WriteString("\nRetours:\n")
	for _, f := range feedback {
		fmt.Fprintf(&b, "[%s/%s] %s\n", f.Type, f.Severity, f.Content)
	}
	return b.String()
}

func excerpt(s string) string {
	return excerptN(s, warningExcerptMax)
}

func excerptN(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func parseSeverity(s string) core.Severity {
	switch s {
	case "critical":
		return core.SeverityCritical
	case "major":
		return core.SeverityMajor
	case "minor":
		return core.SeverityMinor
	default:
		return core.SeverityInfo
	}
}
