package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Id:        1,
				ProjectId: 7,
				Filename:  "cahier-des-charges.pdf",
				Kind:      DocumentKindRFP,
			},
			wantErr: nil,
		},
		{
			name: "valid document with empty extracted text",
			doc: &Document{
				Id:            1,
				ProjectId:     7,
				Filename:      "annexe.docx",
				Kind:          DocumentKindReference,
				ExtractedText: "",
			},
			wantErr: nil,
		},
		{
			name: "valid document with ID 0",
			doc: &Document{
				Id:        0,
				ProjectId: 7,
				Filename:  "memo.pdf",
				Kind:      DocumentKindPastSubmission,
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing project",
			doc: &Document{
				Id:       1,
				Filename: "cahier-des-charges.pdf",
				Kind:     DocumentKindRFP,
			},
			wantErr: ErrMissingProject,
		},
		{
			name: "empty filename",
			doc: &Document{
				Id:        1,
				ProjectId: 7,
				Filename:  "",
				Kind:      DocumentKindRFP,
			},
			wantErr: ErrInvalidDocument,
		},
		{
			name: "unknown kind",
			doc: &Document{
				Id:        1,
				ProjectId: 7,
				Filename:  "cahier-des-charges.pdf",
				Kind:      DocumentKind(999),
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateDocument() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *ExtractedItem
		wantErr error
	}{
		{
			name: "valid question",
			item: &ExtractedItem{
				Id:           1,
				ProjectId:    7,
				Kind:         ItemKindQuestion,
				OriginalText: "Décrivez votre méthodologie de gestion de projet.",
			},
			wantErr: nil,
		},
		{
			name: "valid condition without section ref",
			item: &ExtractedItem{
				Id:           2,
				ProjectId:    7,
				Kind:         ItemKindCondition,
				OriginalText: "Le prestataire devra être certifié ISO 27001.",
				SectionRef:   "",
			},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidItem,
		},
		{
			name: "missing project",
			item: &ExtractedItem{
				Id:           1,
				Kind:         ItemKindQuestion,
				OriginalText: "Décrivez votre organisation.",
			},
			wantErr: ErrMissingProject,
		},
		{
			name: "empty original text",
			item: &ExtractedItem{
				Id:        1,
				ProjectId: 7,
				Kind:      ItemKindQuestion,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "unknown kind",
			item: &ExtractedItem{
				Id:           1,
				ProjectId:    7,
				Kind:         ItemKind(0),
				OriginalText: "Texte original.",
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateItem() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateItem() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *DocumentChunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &DocumentChunk{
				Id:         1,
				ProjectId:  7,
				DocumentId: 3,
				Content:    "Un extrait du document.",
				StartChar:  0,
				EndChar:    23,
			},
			wantErr: nil,
		},
		{
			name: "valid chunk without vector",
			chunk: &DocumentChunk{
				Id:         1,
				ProjectId:  7,
				DocumentId: 3,
				Content:    "Un extrait du document.",
				StartChar:  800,
				EndChar:    1800,
				Vector:     nil,
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "missing document",
			chunk: &DocumentChunk{
				Id:        1,
				ProjectId: 7,
				Content:   "Un extrait.",
				EndChar:   11,
			},
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty content",
			chunk: &DocumentChunk{
				Id:         1,
				ProjectId:  7,
				DocumentId: 3,
				EndChar:    10,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "end before start",
			chunk: &DocumentChunk{
				Id:         1,
				ProjectId:  7,
				DocumentId: 3,
				Content:    "Un extrait.",
				StartChar:  100,
				EndChar:    50,
			},
			wantErr: ErrInvalidRange,
		},
		{
			name: "negative start",
			chunk: &DocumentChunk{
				Id:         1,
				ProjectId:  7,
				DocumentId: 3,
				Content:    "Un extrait.",
				StartChar:  -1,
				EndChar:    10,
			},
			wantErr: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateChunk() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJob(t *testing.T) {
	tests := []struct {
		name    string
		job     *JobProgress
		wantErr error
	}{
		{
			name: "valid queued job",
			job: &JobProgress{
				Id:        1,
				ProjectId: 7,
				Type:      JobTypeIndexing,
				Status:    JobStatusQueued,
				Progress:  0,
			},
			wantErr: nil,
		},
		{
			name: "valid completed job",
			job: &JobProgress{
				Id:        1,
				ProjectId: 7,
				Type:      JobTypeStructure,
				Status:    JobStatusCompleted,
				Progress:  100,
			},
			wantErr: nil,
		},
		{
			name:    "nil job",
			job:     nil,
			wantErr: ErrInvalidJob,
		},
		{
			name: "progress over 100",
			job: &JobProgress{
				Id:        1,
				ProjectId: 7,
				Type:      JobTypeExtraction,
				Status:    JobStatusProcessing,
				Progress:  150,
			},
			wantErr: ErrInvalidProgress,
		},
		{
			name: "negative progress",
			job: &JobProgress{
				Id:        1,
				ProjectId: 7,
				Type:      JobTypeExtraction,
				Status:    JobStatusProcessing,
				Progress:  -5,
			},
			wantErr: ErrInvalidProgress,
		},
		{
			name: "unknown type",
			job: &JobProgress{
				Id:        1,
				ProjectId: 7,
				Type:      JobType(42),
				Status:    JobStatusQueued,
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJob(tt.job)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateJob() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateJob() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateJob() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSection(t *testing.T) {
	tests := []struct {
		name    string
		section *OutlineSection
		wantErr error
	}{
		{
			name: "valid section",
			section: &OutlineSection{
				Id:        1,
				ProjectId: 7,
				Title:     "Présentation de la société",
				Source:    SectionSourceTemplate,
			},
			wantErr: nil,
		},
		{
			name: "valid nested section",
			section: &OutlineSection{
				Id:        2,
				ProjectId: 7,
				ParentId:  1,
				Position:  3,
				Title:     "Références clients",
				Source:    SectionSourceAISuggested,
			},
			wantErr: nil,
		},
		{
			name:    "nil section",
			section: nil,
			wantErr: ErrInvalidSection,
		},
		{
			name: "empty title",
			section: &OutlineSection{
				Id:        1,
				ProjectId: 7,
				Source:    SectionSourceRFP,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "unknown source",
			section: &OutlineSection{
				Id:        1,
				ProjectId: 7,
				Title:     "Annexes",
				Source:    SectionSource(0),
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSection(tt.section)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSection() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateSection() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSection() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
