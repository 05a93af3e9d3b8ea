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


// Package search provides hybrid retrieval over the project knowledge base.
//
// The Retriever type scores every embedded chunk of a project against a
// query by combining three signals:
//   - Semantic similarity between the query and chunk embeddings
//   - Lexical rank from stop-word-filtered query term coverage
//   - Fuzzy string similarity tolerant of spelling variation
//
// Chunks without an embedding are ineligible. A failure to embed the
// query degrades to an empty result set rather than an error, so
// retrieval consumers (drafting context, chat) never fail outright on a
// transient embedding outage.
package search
