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


// Package jsonx decodes JSON out of LLM responses, which routinely arrive
// wrapped in markdown code fences or with minor formatting damage.
package jsonx

import (
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode unmarshals a response into T after stripping fences and repairing
// common formatting damage.
func Decode[T any](s string) (T, error) {
	var v T
	cleaned := Repair(StripFences(s))
	err := json.Unmarshal([]byte(cleaned), &v)
	return v, err
}

// DecodeList unmarshals a response expected to be a JSON array of T.
// A bare object is accepted as a one-element list, since models sometimes
// drop the array wrapper around a single result.
func DecodeList[T any](s string) ([]T, error) {
	cleaned := Repair(StripFences(s))

	var list []T
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return list, nil
	}

	var single T
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}
