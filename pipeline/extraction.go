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
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jsonx"
)

// minExtractableText skips documents whose extraction produced nothing usable.
const minExtractableText = 10

// extractedItem is the JSON shape the extraction prompt asks for.
type extractedItem struct {
	Kind             string   `json:"kind"`
	OriginalText     string   `json:"originalText"`
	SectionReference string   `json:"sectionReference"`
	SourcePage       int      `json:"sourcePage"`
	AiThemes         []string `json:"aiThemes"`
}

// RunExtraction pulls questions and conditions out of the project's tender
// documents, replacing any previously extracted items. Each item is
// assigned to an outline section by title containment, falling back to the
// first section. A document whose response fails to parse is skipped.
func (p *Pipeline) RunExtraction(ctx context.Context, projectID core.ID) error {
	job, err := p.tracker.Begin(ctx, projectID, core.JobTypeExtraction, "Extraction des elements...")
	if err != nil {
		return fmt.Errorf("starting extraction job: %w", err)
	}

	if err := p.itemRepository.DeleteItemsByProject(ctx, projectID); err != nil {
		return p.fail(ctx, job, fmt.Errorf("clearing items: %w", err))
	}

	rfpDocs, err := p.documentRepository.GetDocumentsByKind(ctx, projectID, core.DocumentKindRFP)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("loading RFP documents: %w", err))
	}
	if len(rfpDocs) == 0 {
		return p.tracker.Complete(ctx, job, "Aucun document RFP")
	}

	sections, err := p.sectionRepository.GetSectionsByProject(ctx, projectID)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("loading sections: %w", err))
	}

	model, systemPrompt := p.resolve(ai.OperationExtraction)
	total := 0

	for i, doc := range rfpDocs {
		if err := p.tracker.Update(ctx, job, i*100/len(rfpDocs),
			fmt.Sprintf("Analyse de %s...", doc.Filename)); err != nil {
			p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
		}

		if len(doc.ExtractedText) < minExtractableText {
			continue
		}

		response, err := p.generator.Generate(ctx, model, systemPrompt, doc.ExtractedText)
		if err != nil {
			return p.fail(ctx, job, fmt.Errorf("extracting items from %s: %w", doc.Filename, err))
		}

		parsed, err := jsonx.DecodeList[extractedItem](response)
		if err != nil {
			p.logger.Warn("failed to parse extraction response, skipping document",
				"filename", doc.Filename, "error", err)
			continue
		}

		for _, item := range parsed {
			kind := core.ItemKindQuestion
			if item.Kind == "condition" {
				kind = core.ItemKindCondition
			}
			if _, err := p.itemRepository.AddItems(ctx, &core.ExtractedItem{
				ProjectId:        projectID,
				SectionId:        matchSection(item.SectionReference, sections),
				Kind:             kind,
				OriginalText:     item.OriginalText,
				SectionRef:       item.SectionReference,
				SourceDocumentId: doc.Id,
				SourcePage:       item.SourcePage,
				Themes:           item.AiThemes,
				Status:           core.ItemStatusPending,
			}); err != nil {
				return p.fail(ctx, job, fmt.Errorf("saving item: %w", err))
			}
			total++
		}
	}

	return p.tracker.Complete(ctx, job, fmt.Sprintf("%d elements extraits", total))
}

// matchSection assigns an item to an outline section by bidirectional
// title containment against the item's section reference, falling back to
// the first section. Returns 0 when the project has no sections.
func matchSection(reference string, sections []*core.OutlineSection) core.ID {
	if len(sections) == 0 {
		return 0
	}
	if reference != "" {
		ref := strings.ToLower(reference)
		for _, section := range sections {
			title := strings.ToLower(section.Title)
			if strings.Contains(title, ref) || strings.Contains(ref, title) {
				return section.Id
			}
		}
	}
	return sections[0].Id
}
