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


package storage

import (
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalSection serializes an OutlineSection to bytes.
func MarshalSection(section *core.OutlineSection) []byte {
	buf := make([]byte, core.OutlineSectionMUS.Size(*section))
	core.OutlineSectionMUS.Marshal(*section, buf)
	return buf
}

// UnmarshalSection deserializes an OutlineSection from bytes.
func UnmarshalSection(data []byte) (*core.OutlineSection, error) {
	section, _, err := core.OutlineSectionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// MarshalItem serializes an ExtractedItem to bytes.
func MarshalItem(item *core.ExtractedItem) []byte {
	buf := make([]byte, core.ExtractedItemMUS.Size(*item))
	core.ExtractedItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes an ExtractedItem from bytes.
func UnmarshalItem(data []byte) (*core.ExtractedItem, error) {
	item, _, err := core.ExtractedItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalDraftGroup serializes a DraftGroup to bytes.
func MarshalDraftGroup(group *core.DraftGroup) []byte {
	buf := make([]byte, core.DraftGroupMUS.Size(*group))
	core.DraftGroupMUS.Marshal(*group, buf)
	return buf
}

// UnmarshalDraftGroup deserializes a DraftGroup from bytes.
func UnmarshalDraftGroup(data []byte) (*core.DraftGroup, error) {
	group, _, err := core.DraftGroupMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// MarshalDraft serializes a ResponseDraft to bytes.
func MarshalDraft(draft *core.ResponseDraft) []byte {
	buf := make([]byte, core.ResponseDraftMUS.Size(*draft))
	core.ResponseDraftMUS.Marshal(*draft, buf)
	return buf
}

// UnmarshalDraft deserializes a ResponseDraft from bytes.
func UnmarshalDraft(data []byte) (*core.ResponseDraft, error) {
	draft, _, err := core.ResponseDraftMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// MarshalChunk serializes a DocumentChunk to bytes.
func MarshalChunk(chunk *core.DocumentChunk) []byte {
	buf := make([]byte, core.DocumentChunkMUS.Size(*chunk))
	core.DocumentChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a DocumentChunk from bytes.
func UnmarshalChunk(data []byte) (*core.DocumentChunk, error) {
	chunk, _, err := core.DocumentChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalFeedback serializes an AnalysisFeedback to bytes.
func MarshalFeedback(fb *core.AnalysisFeedback) []byte {
	buf := make([]byte, core.AnalysisFeedbackMUS.Size(*fb))
	core.AnalysisFeedbackMUS.Marshal(*fb, buf)
	return buf
}

// UnmarshalFeedback deserializes an AnalysisFeedback from bytes.
func UnmarshalFeedback(data []byte) (*core.AnalysisFeedback, error) {
	fb, _, err := core.AnalysisFeedbackMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// MarshalJob serializes a JobProgress to bytes.
func MarshalJob(job *core.JobProgress) []byte {
	buf := make([]byte, core.JobProgressMUS.Size(*job))
	core.JobProgressMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJob deserializes a JobProgress from bytes.
func UnmarshalJob(data []byte) (*core.JobProgress, error) {
	job, _, err := core.JobProgressMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalChatMessage serializes a ChatMessage to bytes.
func MarshalChatMessage(msg *core.ChatMessage) []byte {
	buf := make([]byte, core.ChatMessageMUS.Size(*msg))
	core.ChatMessageMUS.Marshal(*msg, buf)
	return buf
}

// UnmarshalChatMessage deserializes a ChatMessage from bytes.
func UnmarshalChatMessage(data []byte) (*core.ChatMessage, error) {
	msg, _, err := core.ChatMessageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
