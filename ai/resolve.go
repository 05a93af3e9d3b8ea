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


package ai

// Overrides maps operations to model identifiers or system prompts.
// A nil map means no overrides at that level.
type Overrides map[Operation]string

// ResolveModel selects the model for an operation. Precedence is
// project overrides, then user defaults, then the built-in defaults.
// An override naming a model absent from the registry is ignored and
// resolution falls through to the next level, so a stale saved
// identifier never breaks an operation.
func ResolveModel(op Operation, projectOverrides, userDefaults Overrides) Model {
	if id, ok := projectOverrides[op]; ok {
		if m, ok := ModelById(id); ok {
			return m
		}
	}
	if id, ok := userDefaults[op]; ok {
		if m, ok := ModelById(id); ok {
			return m
		}
	}
	m, _ := ModelById(DefaultModels[op])
	return m
}

// ResolvePrompt selects the system prompt for an operation, with the
// same precedence as ResolveModel. Unlike models, any non-empty
// override string is honored as-is.
func ResolvePrompt(op Operation, projectOverrides, userDefaults Overrides) string {
	if p, ok := projectOverrides[op]; ok && p != "" {
		return p
	}
	if p, ok := userDefaults[op]; ok && p != "" {
		return p
	}
	return Prompts[op]
}
