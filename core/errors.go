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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidSection indicates an OutlineSection failed validation.
	ErrInvalidSection = errors.New("invalid outline section")

	// ErrInvalidItem indicates an ExtractedItem failed validation.
	ErrInvalidItem = errors.New("invalid extracted item")

	// ErrInvalidDraftGroup indicates a DraftGroup failed validation.
	ErrInvalidDraftGroup = errors.New("invalid draft group")

	// ErrInvalidChunk indicates a DocumentChunk failed validation.
	ErrInvalidChunk = errors.New("invalid document chunk")

	// ErrInvalidFeedback indicates an AnalysisFeedback failed validation.
	ErrInvalidFeedback = errors.New("invalid analysis feedback")

	// ErrInvalidJob indicates a JobProgress failed validation.
	ErrInvalidJob = errors.New("invalid job progress")

	// ErrEmptyContent indicates a required content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyTitle indicates a section title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidKind indicates an enum field holds an unknown value.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrMissingProject indicates the ProjectId field is zero.
	ErrMissingProject = errors.New("project id is required")

	// ErrInvalidRange indicates chunk character offsets are inconsistent.
	ErrInvalidRange = errors.New("invalid character range")

	// ErrInvalidProgress indicates a progress value outside 0 to 100.
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)
