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


package pipeline

import (
	"context"
	"fmt"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/chunk"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

const (
	// embedBatchSize is how many chunks are embedded per provider call.
	embedBatchSize = 20
	// chunkProgressShare is how much of the stage's progress chunking
	// accounts for; embedding fills the rest.
	chunkProgressShare = 80
)

// RunIndexing rebuilds the project's retrieval index: prior chunks are
// deleted, every knowledge document is re-chunked, and the new chunks are
// embedded in batches. A failed embedding batch is logged and skipped,
// leaving those chunks lexical-only.
func (p *Pipeline) RunIndexing(ctx context.Context, projectID core.ID) error {
	job, err := p.tracker.Begin(ctx, projectID, core.JobTypeIndexing, "Indexation des documents...")
	if err != nil {
		return fmt.Errorf("starting indexing job: %w", err)
	}

	docs, err := p.documentRepository.GetDocumentsByProject(ctx, projectID)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("loading documents: %w", err))
	}
	var knowledge []*core.Document
	for _, doc := range docs {
		if doc.Kind.IsKnowledge() {
			knowledge = append(knowledge, doc)
		}
	}
	if len(knowledge) == 0 {
		return p.tracker.Complete(ctx, job, "Aucun document de connaissance trouvé")
	}

	// Full rebuild, never incremental.
	if err := p.chunkRepository.DeleteChunksByProject(ctx, projectID); err != nil {
		return p.fail(ctx, job, fmt.Errorf("clearing chunks: %w", err))
	}

	var added []*core.DocumentChunk
	for i, doc := range knowledge {
		if err := p.tracker.Update(ctx, job, i*chunkProgressShare/len(knowledge),
			fmt.Sprintf("Chunking %s...", doc.Filename)); err != nil {
			p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
		}
		if doc.ExtractedText == "" {
			continue
		}

		for _, c := range chunk.All(doc.ExtractedText) {
			saved, err := p.chunkRepository.AddChunks(ctx, &core.DocumentChunk{
				ProjectId:    projectID,
				DocumentId:   doc.Id,
				Content:      c.Text,
				SectionTitle: doc.Filename,
				StartChar:    c.Start,
				EndChar:      c.End,
			})
			if err != nil {
				return p.fail(ctx, job, fmt.Errorf("saving chunk: %w", err))
			}
			added = append(added, saved[0])
		}
	}

	if err := p.tracker.Update(ctx, job, chunkProgressShare,
		fmt.Sprintf("Embedding %d chunks...", len(added))); err != nil {
		p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
	}

	for start := 0; start < len(added); start += embedBatchSize {
		end := min(start+embedBatchSize, len(added))
		batch := added[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			// Non-fatal: these chunks stay without a vector and are
			// excluded from semantic retrieval.
			p.logger.Warn("embedding batch failed, skipping",
				"offset", start, "size", len(batch), "error", err)
		} else {
			for i, c := range batch {
				c.Vector = vectors[i]
			}
			if _, err := p.chunkRepository.UpdateChunks(ctx, batch...); err != nil {
				return p.fail(ctx, job, fmt.Errorf("saving embeddings: %w", err))
			}
		}

		progress := chunkProgressShare + start*(100-chunkProgressShare)/len(added)
		if err := p.tracker.Update(ctx, job, progress, ""); err != nil {
			p.logger.Error("failed to update job progress", "job_id", job.Id, "error", err)
		}
	}

	return p.tracker.Complete(ctx, job, fmt.Sprintf("%d chunks indexés", len(added)))
}
