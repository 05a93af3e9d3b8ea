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
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

// Block labels as they appear in the assembled prompt context.
const (
	questionsHeader  = "=== QUESTIONS A REPONDRE ==="
	conditionsHeader = "=== CONDITIONS A RESPECTER ==="
	knowledgeHeader  = "=== CONNAISSANCES (soumissions precedentes) ==="
	feedbackHeader   = "=== RETOURS D'EVALUATIONS PRECEDENTES ==="
)

const (
	// knowledgeLimit caps how many retrieved chunks enrich a draft context.
	knowledgeLimit = 5
	// knowledgeQueryMax truncates the retrieval query derived from item text.
	knowledgeQueryMax = 500
)

// Searcher retrieves a project's knowledge chunks relevant to a query.
// *search.Retriever satisfies it.
type Searcher interface {
	Search(ctx context.Context, projectID core.ID, query string, limit int) ([]*core.RetrievedChunk, error)
}

// ContextAssembler builds the prompt context for one section's draft from
// the section's extracted items, the knowledge base, and past evaluation
// feedback. Blocks that would be empty are omitted entirely.
type ContextAssembler struct {
	itemRepository     storage.ItemRepository
	feedbackRepository storage.FeedbackRepository
	searcher           Searcher
	logger             *slog.Logger
}

// NewContextAssembler creates a new context assembler. searcher may be nil,
// in which case the knowledge block is always omitted.
func NewContextAssembler(
	itemRepository storage.ItemRepository,
	feedbackRepository storage.FeedbackRepository,
	searcher Searcher,
) (*ContextAssembler, error) {
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if feedbackRepository == nil {
		return nil, ErrFeedbackRepositoryRequired
	}
	return &ContextAssembler{
		itemRepository:     itemRepository,
		feedbackRepository: feedbackRepository,
		searcher:           searcher,
		logger:             slog.Default().With("component", "context-assembler"),
	}, nil
}

// Assemble builds the context for a section. The result is appended to the
// draft group's system prompt by the caller; an empty string means no
// context was available. Knowledge retrieval and feedback lookup are
// best-effort: their failures are logged and their blocks omitted.
func (a *ContextAssembler) Assemble(ctx context.Context, projectID, sectionID core.ID) (string, error) {
	items, err := a.itemRepository.GetItemsBySection(ctx, sectionID)
	if err != nil {
		return "", fmt.Errorf("loading section items: %w", err)
	}

	var blocks []string

	var questions, conditions []string
	for _, item := range items {
		line := "- " + item.OriginalText
		switch item.Kind {
		case core.ItemKindQuestion:
			questions = append(questions, line)
		case core.ItemKindCondition:
			conditions = append(conditions, line)
		}
	}
	if len(questions) > 0 {
		blocks = append(blocks, questionsHeader+"\n"+strings.Join(questions, "\n"))
	}
	if len(conditions) > 0 {
		blocks = append(blocks, conditionsHeader+"\n"+strings.Join(conditions, "\n"))
	}

	if knowledge := a.knowledgeBlock(ctx, projectID, items); knowledge != "" {
		blocks = append(blocks, knowledge)
	}
	if feedback := a.feedbackBlock(ctx, projectID, items); feedback != "" {
		blocks = append(blocks, feedback)
	}

	return strings.Join(blocks, "\n\n"), nil
}

// knowledgeBlock retrieves past-submission chunks relevant to the section's
// items. The query is the items' text joined and truncated; a retrieval
// failure degrades to no block.
func (a *ContextAssembler) knowledgeBlock(ctx context.Context, projectID core.ID, items []*core.ExtractedItem) string {
	if a.searcher == nil || len(items) == 0 {
		return ""
	}

	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.OriginalText)
	}
	query := strings.Join(texts, " ")
	if len(query) > knowledgeQueryMax {
		query = query[:knowledgeQueryMax]
	}

	results, err := a.searcher.Search(ctx, projectID, query, knowledgeLimit)
	if err != nil {
		a.logger.Warn("knowledge retrieval failed, drafting without it",
			"project_id", projectID, "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	contents := make([]string, 0, len(results))
	for _, result := range results {
		contents = append(contents, result.Chunk.Content)
	}
	return knowledgeHeader + "\n" + strings.Join(contents, "\n---\n")
}

// feedbackBlock collects evaluation feedback linked to the section's items
// plus the project's unlinked feedback. A lookup failure degrades to no block.
func (a *ContextAssembler) feedbackBlock(ctx context.Context, projectID core.ID, items []*core.ExtractedItem) string {
	var lines []string
	for _, item := range items {
		linked, err := a.feedbackRepository.GetFeedbackByItem(ctx, item.Id)
		if err != nil {
			a.logger.Warn("feedback lookup failed, drafting without it",
				"item_id", item.Id, "error", err)
			return ""
		}
		for _, f := range linked {
			lines = append(lines, feedbackLine(f))
		}
	}

	projectFeedback, err := a.feedbackRepository.GetFeedbackByProject(ctx, projectID)
	if err != nil {
		a.logger.Warn("feedback lookup failed, drafting without it",
			"project_id", projectID, "error", err)
		return ""
	}
	for _, f := range projectFeedback {
		if f.ItemId == 0 {
			lines = append(lines, feedbackLine(f))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return feedbackHeader + "\n" + strings.Join(lines, "\n")
}

func feedbackLine(f *core.AnalysisFeedback) string {
	return fmt.Sprintf("[%s/%s] %s", f.Type, f.Severity, f.Content)
}
