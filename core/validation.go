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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ProjectId must be set
//   - Filename must not be empty
//   - Kind must be a known DocumentKind
//
// NOT validated:
//   - ExtractedText (empty until text extraction runs)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingProject)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidDocument)
	}

	if err := ValidateDocumentKind(doc.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateSection validates an OutlineSection according to domain rules.
//
// Validation rules:
//   - ProjectId must be set
//   - Title must not be empty
//   - Source must be a known SectionSource
func ValidateSection(section *OutlineSection) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if section.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrMissingProject)
	}

	if section.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyTitle)
	}

	if section.Source < SectionSourceTemplate || section.Source > SectionSourceAISuggested {
		return fmt.Errorf("%w: %w: source %d", ErrInvalidSection, ErrInvalidKind, section.Source)
	}

	return nil
}

// ValidateItem validates an ExtractedItem according to domain rules.
//
// Validation rules:
//   - ProjectId must be set
//   - OriginalText must not be empty
//   - Kind must be Question or Condition
func ValidateItem(item *ExtractedItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrMissingProject)
	}

	if item.OriginalText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyContent)
	}

	if item.Kind != ItemKindQuestion && item.Kind != ItemKindCondition {
		return fmt.Errorf("%w: %w: kind %d", ErrInvalidItem, ErrInvalidKind, item.Kind)
	}

	return nil
}

// ValidateDraftGroup validates a DraftGroup according to domain rules.
func ValidateDraftGroup(group *DraftGroup) error {
	if group == nil {
		return fmt.Errorf("%w: group is nil", ErrInvalidDraftGroup)
	}

	if group.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDraftGroup, ErrMissingProject)
	}

	if group.SectionId == 0 {
		return fmt.Errorf("%w: section id is required", ErrInvalidDraftGroup)
	}

	if group.Status < DraftStatusPending || group.Status > DraftStatusFinal {
		return fmt.Errorf("%w: %w: status %d", ErrInvalidDraftGroup, ErrInvalidKind, group.Status)
	}

	return nil
}

// ValidateChunk validates a DocumentChunk according to domain rules.
//
// Validation rules:
//   - ProjectId and DocumentId must be set
//   - Content must not be empty
//   - StartChar must be non-negative and strictly before EndChar
//
// NOT validated:
//   - Vector (empty until the embedding pass runs)
func ValidateChunk(chunk *DocumentChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingProject)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: document id is required", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.StartChar < 0 || chunk.EndChar <= chunk.StartChar {
		return fmt.Errorf("%w: %w: [%d,%d)", ErrInvalidChunk, ErrInvalidRange, chunk.StartChar, chunk.EndChar)
	}

	return nil
}

// ValidateFeedback validates an AnalysisFeedback according to domain rules.
func ValidateFeedback(fb *AnalysisFeedback) error {
	if fb == nil {
		return fmt.Errorf("%w: feedback is nil", ErrInvalidFeedback)
	}

	if fb.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrMissingProject)
	}

	if fb.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyContent)
	}

	if fb.Type < FeedbackTypeStrength || fb.Type > FeedbackTypeComment {
		return fmt.Errorf("%w: %w: type %d", ErrInvalidFeedback, ErrInvalidKind, fb.Type)
	}

	if fb.Severity < SeverityCritical || fb.Severity > SeverityInfo {
		return fmt.Errorf("%w: %w: severity %d", ErrInvalidFeedback, ErrInvalidKind, fb.Severity)
	}

	return nil
}

// ValidateJob validates a JobProgress according to domain rules.
//
// Validation rules:
//   - ProjectId must be set
//   - Type and Status must hold known values
//   - Progress must be within 0 to 100
func ValidateJob(job *JobProgress) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingProject)
	}

	if job.Type < JobTypeStructure || job.Type > JobTypeDraftAll {
		return fmt.Errorf("%w: %w: type %d", ErrInvalidJob, ErrInvalidKind, job.Type)
	}

	if job.Status < JobStatusQueued || job.Status > JobStatusError {
		return fmt.Errorf("%w: %w: status %d", ErrInvalidJob, ErrInvalidKind, job.Status)
	}

	if job.Progress < 0 || job.Progress > 100 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidJob, ErrInvalidProgress, job.Progress)
	}

	return nil
}

// ValidateDocumentKind validates that a DocumentKind has a known value.
func ValidateDocumentKind(kind DocumentKind) error {
	if kind < DocumentKindRFP || kind > DocumentKindAnalysisReport {
		return fmt.Errorf("%w: document kind %d", ErrInvalidKind, kind)
	}
	return nil
}
