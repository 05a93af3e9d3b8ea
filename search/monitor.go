package search

import (
	"iter"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type Monitor interface {
	Start(projectID core.ID, query string)
	QueryEmbedded(vector []float32)
	QueryEmbeddingFailed(err error)
	AfterCandidateScan(ids iter.Seq[uint64])
	Scored(chunk *core.DocumentChunk, semantic, lexical, fuzzy float32)
	Finish(results []*core.RetrievedChunk)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.ID, _ string)                               {}
func (n *noopMonitor) QueryEmbedded(_ []float32)                               {}
func (n *noopMonitor) QueryEmbeddingFailed(_ error)                            {}
func (n *noopMonitor) AfterCandidateScan(_ iter.Seq[uint64])                   {}
func (n *noopMonitor) Scored(_ *core.DocumentChunk, _, _, _ float32)           {}
func (n *noopMonitor) Finish(_ []*core.RetrievedChunk)                         {}
