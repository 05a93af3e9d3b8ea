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


package jobs

import "errors"

var (
	// ErrJobRepositoryRequired is returned when a job repository is not provided.
	ErrJobRepositoryRequired = errors.New("job repository required")

	// ErrQueueStoreRequired is returned when a queue store is not provided.
	ErrQueueStoreRequired = errors.New("queue store required")

	// ErrRegistryRequired is returned when a handler registry is not provided.
	ErrRegistryRequired = errors.New("handler registry required")

	// ErrJobTerminal is returned when updating a completed or errored job.
	ErrJobTerminal = errors.New("job already reached a terminal status")

	// ErrInvalidRegistration is returned for an empty kind or nil handler.
	ErrInvalidRegistration = errors.New("kind and handler are required")

	// ErrKindRegistered is returned when a task kind is registered twice.
	ErrKindRegistered = errors.New("task kind already registered")

	// ErrUnknownKind is returned when a task names an unregistered kind.
	ErrUnknownKind = errors.New("unknown task kind")
)
