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


package chat

import "errors"

var (
	// ErrChatRepositoryRequired is returned when no chat repository is provided.
	ErrChatRepositoryRequired = errors.New("chat repository is required")

	// ErrItemRepositoryRequired is returned when no item repository is provided.
	ErrItemRepositoryRequired = errors.New("item repository is required")

	// ErrGeneratorRequired is returned when no text generator is provided.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrEmptyMessage is returned when Send is called with a blank message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrEmptyInstruction is returned when SuggestEdit is called with a
	// blank instruction.
	ErrEmptyInstruction = errors.New("instruction is empty")
)
