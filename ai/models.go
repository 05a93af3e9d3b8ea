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

// Vendor identifies the upstream service hosting a model.
type Vendor string

const (
	VendorAnthropic Vendor = "anthropic"
	VendorOpenAI    Vendor = "openai"
)

// Model describes a registered language model. The Id is the stable
// identifier used in configuration and overrides; ModelId is the name
// passed to the vendor API, which changes as vendors ship new snapshots.
type Model struct {
	Id        string
	Label     string
	Vendor    Vendor
	ModelId   string
	MaxOutput int
}

// Models is the registry of models available for assignment to operations.
var Models = []Model{
	{
		Id:        "claude-opus",
		Label:     "Claude Opus 4",
		Vendor:    VendorAnthropic,
		ModelId:   "claude-opus-4-0-20250514",
		MaxOutput: 16384,
	},
	{
		Id:        "claude-sonnet",
		Label:     "Claude Sonnet 4",
		Vendor:    VendorAnthropic,
		ModelId:   "claude-sonnet-4-5-20250929",
		MaxOutput: 16384,
	},
	{
		Id:        "claude-haiku",
		Label:     "Claude Haiku 4.5",
		Vendor:    VendorAnthropic,
		ModelId:   "claude-haiku-4-5-20251001",
		MaxOutput: 8192,
	},
	{
		Id:        "gpt-4o",
		Label:     "GPT-4o",
		Vendor:    VendorOpenAI,
		ModelId:   "gpt-4o",
		MaxOutput: 16384,
	},
	{
		Id:        "gpt-4o-mini",
		Label:     "GPT-4o Mini",
		Vendor:    VendorOpenAI,
		ModelId:   "gpt-4o-mini",
		MaxOutput: 16384,
	},
	{
		Id:        "gpt-4.1",
		Label:     "GPT-4.1",
		Vendor:    VendorOpenAI,
		ModelId:   "gpt-4.1",
		MaxOutput: 32768,
	},
	{
		Id:        "gpt-4.1-mini",
		Label:     "GPT-4.1 Mini",
		Vendor:    VendorOpenAI,
		ModelId:   "gpt-4.1-mini",
		MaxOutput: 32768,
	},
}

// DefaultModels assigns a registry model to each operation.
// These apply when neither project overrides nor user defaults name a model.
var DefaultModels = map[Operation]string{
	OperationAnalysis:   "claude-sonnet",
	OperationStructure:  "claude-sonnet",
	OperationExtraction: "claude-sonnet",
	OperationDrafting:   "claude-sonnet",
	OperationFeedback:   "claude-sonnet",
	OperationCompliance: "claude-sonnet",
	OperationChat:       "claude-haiku",
	OperationEmbedding:  "gpt-4o-mini",
}

// ModelById looks up a model in the registry by its stable identifier.
func ModelById(id string) (Model, bool) {
	for _, m := range Models {
		if m.Id == id {
			return m, true
		}
	}
	return Model{}, false
}
