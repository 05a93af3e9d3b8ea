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

import "errors"

var (
	// ErrDraftRepositoryRequired is returned when no draft repository is provided.
	ErrDraftRepositoryRequired = errors.New("draft repository is required")

	// ErrSectionRepositoryRequired is returned when no section repository is provided.
	ErrSectionRepositoryRequired = errors.New("section repository is required")

	// ErrItemRepositoryRequired is returned when no item repository is provided.
	ErrItemRepositoryRequired = errors.New("item repository is required")

	// ErrFeedbackRepositoryRequired is returned when no feedback repository is provided.
	ErrFeedbackRepositoryRequired = errors.New("feedback repository is required")

	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrAssemblerRequired is returned when no context assembler is provided.
	ErrAssemblerRequired = errors.New("context assembler is required")

	// ErrTrackerRequired is returned when no job tracker is provided.
	ErrTrackerRequired = errors.New("job tracker is required")
)
