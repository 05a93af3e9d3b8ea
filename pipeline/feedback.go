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

// analysisFeedback is the JSON shape the feedback prompt asks for.
type analysisFeedback struct {
	FeedbackType     string `json:"feedbackType"`
	Severity         string `json:"severity"`
	Content          string `json:"content"`
	SectionReference string `json:"sectionReference"`
}

// RunFeedback extracts evaluation observations from the project's analysis
// report documents and links each to an extracted item by section
// reference where one matches. A document's prior feedback is replaced;
// a response that fails to parse skips that document.
func (p *Pipeline) RunFeedback(ctx context.Context, projectID core.ID) error {
	job, err := p.tracker.Begin(ctx, projectID, core.JobTypeFeedback, "Extraction des retours...")
	if err != nil {
		return fmt.Errorf("starting feedback job: %w", err)
	}

	reports, err := p.documentRepository.GetDocumentsByKind(ctx, projectID, core.DocumentKindAnalysisReport)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("loading report documents: %w", err))
	}
	if len(reports) == 0 {
		return p.tracker.Complete(ctx, job, "Aucun rapport d'analyse trouve")
	}

	items, err := p.itemRepository.GetItemsByProject(ctx, projectID)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("loading items: %w", err))
	}

	model, systemPrompt := p.resolve(ai.OperationFeedback)
	total := 0

	for i, doc := range reports {
		if err := p.tracker.Update(ctx, job, i*100/len(reports),
			fmt.Sprintf("Analyse de %s...", doc.Filename)); err != nil {
			p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
		}

		if doc.ExtractedText == "" {
			continue
		}

		response, err := p.generator.Generate(ctx, model, systemPrompt, doc.ExtractedText)
		if err != nil {
			return p.fail(ctx, job, fmt.Errorf("extracting feedback from %s: %w", doc.Filename, err))
		}

		parsed, err := jsonx.DecodeList[analysisFeedback](response)
		if err != nil {
			p.logger.Warn("failed to parse feedback response, skipping document",
				"filename", doc.Filename, "error", err)
			continue
		}

		if err := p.feedbackRepository.DeleteFeedbackByDocument(ctx, doc.Id); err != nil {
			return p.fail(ctx, job, fmt.Errorf("clearing document feedback: %w", err))
		}

		for _, fb := range parsed {
			if _, err := p.feedbackRepository.AddFeedback(ctx, &core.AnalysisFeedback{
				ProjectId:  projectID,
				DocumentId: doc.Id,
				ItemId:     matchItem(fb.SectionReference, items),
				SectionRef: fb.SectionReference,
				Type:       feedbackType(fb.FeedbackType),
				Severity:   severity(fb.Severity),
				Content:    fb.Content,
			}); err != nil {
				return p.fail(ctx, job, fmt.Errorf("saving feedback: %w", err))
			}
			total++
		}
	}

	return p.tracker.Complete(ctx, job, fmt.Sprintf("%d retours extraits", total))
}

// matchItem links feedback to an extracted item by exact section-reference
// equality, then by the reference appearing in the item's text. Returns 0
// when nothing matches.
func matchItem(reference string, items []*core.ExtractedItem) core.ID {
	if reference == "" {
		return 0
	}
	ref := strings.ToLower(reference)
	for _, item := range items {
		if item.SectionRef == reference ||
			strings.Contains(strings.ToLower(item.OriginalText), ref) {
			return item.Id
		}
	}
	return 0
}

func feedbackType(s string) core.FeedbackType {
	switch s {
	case "strength":
		return core.FeedbackTypeStrength
	case "weakness":
		return core.FeedbackTypeWeakness
	case "recommendation":
		return core.FeedbackTypeRecommendation
	default:
		return core.FeedbackTypeComment
	}
}

func severity(s string) core.Severity {
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
