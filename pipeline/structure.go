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

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jsonx"
)

// Prompt excerpt limits keep the structure request within model context.
const (
	templateExcerptMax = 5000
	rfpExcerptMax      = 8000
)

// outlineSection is the JSON shape the structure prompt asks for.
type outlineSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Position    *int   `json:"position"`
}

// RunStructure derives the response outline from the project's tender
// documents and template. Prior sections and draft groups are deleted
// first, and each new section gets one pending DraftGroup carrying the
// resolved drafting prompt.
func (p *Pipeline) RunStructure(ctx context.Context, projectID core.ID) error {
	job, err := p.tracker.Begin(ctx, projectID, core.JobTypeStructure, "Analyse de la structure...")
	if err != nil {
		return fmt.Errorf("starting structure job: %w", err)
	}

	if err := p.draftRepository.DeleteDraftGroupsByProject(ctx, projectID); err != nil {
		return p.fail(ctx, job, fmt.Errorf("clearing draft groups: %w", err))
	}
	if err := p.sectionRepository.DeleteSectionsByProject(ctx, projectID); err != nil {
		return p.fail(ctx, job, fmt.Errorf("clearing sections: %w", err))
	}

	prompt, err := p.structurePrompt(ctx, projectID)
	if err != nil {
		return p.fail(ctx, job, err)
	}
	if prompt == "" {
		return p.tracker.Complete(ctx, job, "Aucun document a analyser")
	}

	if err := p.tracker.Update(ctx, job, 30, "Extraction de la structure..."); err != nil {
		p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
	}

	model, systemPrompt := p.resolve(ai.OperationStructure)
	response, err := p.generator.Generate(ctx, model, systemPrompt, prompt)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("analyzing structure: %w", err))
	}

	// Unlike per-document stages, a malformed response here fails the
	// whole stage: there is no partial outline worth keeping.
	parsed, err := jsonx.DecodeList[outlineSection](response)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("parsing structure response: %w", err))
	}

	if err := p.tracker.Update(ctx, job, 70, "Enregistrement des sections..."); err != nil {
		p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
	}

	draftPrompt := ai.ResolvePrompt(ai.OperationDrafting, p.projectOverrides, p.userDefaults)
	draftModel := ai.ResolveModel(ai.OperationDrafting, p.projectOverrides, p.userDefaults)

	for i, s := range parsed {
		position := i
		if s.Position != nil {
			position = *s.Position
		}
		sections, err := p.sectionRepository.AddSections(ctx, &core.OutlineSection{
			ProjectId:   projectID,
			Position:    position,
			Title:       s.Title,
			Description: s.Description,
			Source:      sectionSource(s.Source),
		})
		if err != nil {
			return p.fail(ctx, job, fmt.Errorf("saving section: %w", err))
		}

		// Every section owns exactly one draft group.
		if _, err := p.draftRepository.AddDraftGroups(ctx, &core.DraftGroup{
			ProjectId:    projectID,
			SectionId:    sections[0].Id,
			ModelId:      draftModel.Id,
			SystemPrompt: draftPrompt,
			Status:       core.DraftStatusPending,
		}); err != nil {
			return p.fail(ctx, job, fmt.Errorf("saving draft group: %w", err))
		}
	}

	return p.tracker.Complete(ctx, job, fmt.Sprintf("%d sections identifiees", len(parsed)))
}

// structurePrompt assembles the labeled template and RFP excerpts the
// structure model analyzes. Empty when there is nothing to analyze.
func (p *Pipeline) structurePrompt(ctx context.Context, projectID core.ID) (string, error) {
	var prompt string

	templates, err := p.documentRepository.GetDocumentsByKind(ctx, projectID, core.DocumentKindTemplate)
	if err != nil {
		return "", fmt.Errorf("loading template documents: %w", err)
	}
	if len(templates) > 0 && templates[0].ExtractedText != "" {
		prompt += "=== MODELE DE REPONSE ===\n" + truncate(templates[0].ExtractedText, templateExcerptMax) + "\n\n"
	}

	rfpDocs, err := p.documentRepository.GetDocumentsByKind(ctx, projectID, core.DocumentKindRFP)
	if err != nil {
		return "", fmt.Errorf("loading RFP documents: %w", err)
	}
	for _, doc := range rfpDocs {
		if doc.ExtractedText != "" {
			prompt += fmt.Sprintf("=== DOCUMENT RFP: %s ===\n%s\n\n", doc.Filename, truncate(doc.ExtractedText, rfpExcerptMax))
		}
	}

	return prompt, nil
}

func sectionSource(s string) core.SectionSource {
	switch s {
	case "template":
		return core.SectionSourceTemplate
	case "rfp":
		return core.SectionSourceRFP
	default:
		return core.SectionSourceAISuggested
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
