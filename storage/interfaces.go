package storage

import (
	"context"
	"time"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing uploaded documents.
type DocumentRepository interface {
	Repository
	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the documents with generated IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentsByProject retrieves all documents belonging to a project,
	// ordered by insertion time.
	GetDocumentsByProject(ctx context.Context, projectID core.ID) ([]*core.Document, error)

	// GetDocumentsByKind retrieves a project's documents of a given kind.
	GetDocumentsByKind(ctx context.Context, projectID core.ID, kind core.DocumentKind) ([]*core.Document, error)
}

// SectionRepository provides operations for managing outline sections.
type SectionRepository interface {
	Repository
	// AddSections adds one or more sections to storage.
	AddSections(ctx context.Context, sections ...*core.OutlineSection) ([]*core.OutlineSection, error)

	// UpdateSections updates existing sections.
	// Returns ErrNotFound if any section doesn't exist.
	UpdateSections(ctx context.Context, sections ...*core.OutlineSection) ([]*core.OutlineSection, error)

	// DeleteSections removes sections by their IDs.
	DeleteSections(ctx context.Context, ids ...core.ID) error

	// DeleteSectionsByProject removes every section of a project.
	// Used when the structure stage re-runs.
	DeleteSectionsByProject(ctx context.Context, projectID core.ID) error

	// GetSection retrieves a single section by ID.
	// Returns ErrNotFound if the section doesn't exist.
	GetSection(ctx context.Context, id core.ID) (*core.OutlineSection, error)

	// GetSectionsByProject retrieves a project's sections ordered by
	// (ParentId, Position).
	GetSectionsByProject(ctx context.Context, projectID core.ID) ([]*core.OutlineSection, error)
}

// ItemRepository provides operations for managing extracted items.
type ItemRepository interface {
	Repository
	// AddItems adds one or more extracted items to storage.
	AddItems(ctx context.Context, items ...*core.ExtractedItem) ([]*core.ExtractedItem, error)

	// UpdateItems updates existing items.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateItems(ctx context.Context, items ...*core.ExtractedItem) ([]*core.ExtractedItem, error)

	// DeleteItems removes items by their IDs.
	DeleteItems(ctx context.Context, ids ...core.ID) error

	// DeleteItemsByProject removes every item of a project.
	DeleteItemsByProject(ctx context.Context, projectID core.ID) error

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.ExtractedItem, error)

	// GetItemsByProject retrieves all items of a project, ordered by insertion.
	GetItemsByProject(ctx context.Context, projectID core.ID) ([]*core.ExtractedItem, error)

	// GetItemsBySection retrieves the items assigned to an outline section.
	GetItemsBySection(ctx context.Context, sectionID core.ID) ([]*core.ExtractedItem, error)
}

// DraftRepository provides operations for draft groups and their version history.
type DraftRepository interface {
	Repository
	// AddDraftGroups adds one or more draft groups to storage.
	AddDraftGroups(ctx context.Context, groups ...*core.DraftGroup) ([]*core.DraftGroup, error)

	// UpdateDraftGroups updates existing draft groups.
	// Returns ErrNotFound if any group doesn't exist.
	UpdateDraftGroups(ctx context.Context, groups ...*core.DraftGroup) ([]*core.DraftGroup, error)

	// DeleteDraftGroupsByProject removes every draft group of a project
	// along with their version history.
	DeleteDraftGroupsByProject(ctx context.Context, projectID core.ID) error

	// GetDraftGroup retrieves a single draft group by ID.
	// Returns ErrNotFound if the group doesn't exist.
	GetDraftGroup(ctx context.Context, id core.ID) (*core.DraftGroup, error)

	// GetDraftGroupBySection retrieves the draft group owned by a section.
	// Returns ErrNotFound if the section has no group.
	GetDraftGroupBySection(ctx context.Context, sectionID core.ID) (*core.DraftGroup, error)

	// GetDraftGroupsByProject retrieves all draft groups of a project.
	GetDraftGroupsByProject(ctx context.Context, projectID core.ID) ([]*core.DraftGroup, error)

	// AddDraftVersion appends a version snapshot to a group's history.
	// The Version field is assigned atomically from a per-group counter;
	// concurrent snapshots never collide or duplicate a version number.
	AddDraftVersion(ctx context.Context, draft *core.ResponseDraft) (*core.ResponseDraft, error)

	// GetDraftVersions retrieves a group's version history, newest first.
	GetDraftVersions(ctx context.Context, groupID core.ID) ([]*core.ResponseDraft, error)
}

// ChunkRepository provides operations for document chunks and vector search.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	AddChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error)

	// UpdateChunks updates existing chunks, typically to attach embeddings.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error)

	// DeleteChunksByProject removes every chunk of a project.
	// The indexing stage calls this before rebuilding.
	DeleteChunksByProject(ctx context.Context, projectID core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.DocumentChunk, error)

	// GetChunksByProject retrieves all chunks of a project.
	GetChunksByProject(ctx context.Context, projectID core.ID) ([]*core.DocumentChunk, error)

	// CountChunksByProject reports how many chunks a project has.
	CountChunksByProject(ctx context.Context, projectID core.ID) (int, error)

	// FindSimilarChunks finds a project's chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	// Chunks without embeddings are skipped.
	FindSimilarChunks(ctx context.Context, projectID core.ID, vector []float32, minSimilarity float32, limit int) ([]*core.RetrievedChunk, error)
}

// FeedbackRepository provides operations for analysis feedback records.
type FeedbackRepository interface {
	Repository
	// AddFeedback adds one or more feedback records to storage.
	AddFeedback(ctx context.Context, feedback ...*core.AnalysisFeedback) ([]*core.AnalysisFeedback, error)

	// UpdateFeedback updates existing feedback records.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateFeedback(ctx context.Context, feedback ...*core.AnalysisFeedback) ([]*core.AnalysisFeedback, error)

	// DeleteFeedbackByDocument removes the feedback extracted from a document.
	// The feedback stage calls this before re-extraction.
	DeleteFeedbackByDocument(ctx context.Context, documentID core.ID) error

	// GetFeedbackByProject retrieves all feedback of a project.
	GetFeedbackByProject(ctx context.Context, projectID core.ID) ([]*core.AnalysisFeedback, error)

	// GetFeedbackByItem retrieves the feedback linked to an extracted item.
	GetFeedbackByItem(ctx context.Context, itemID core.ID) ([]*core.AnalysisFeedback, error)
}

// JobRepository provides operations for job progress rows.
type JobRepository interface {
	Repository
	// AddJob persists a new job row.
	AddJob(ctx context.Context, job *core.JobProgress) (*core.JobProgress, error)

	// UpdateJob persists the current state of a job row.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.JobProgress) (*core.JobProgress, error)

	// GetJob retrieves a single job row by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.ID) (*core.JobProgress, error)

	// GetJobsByProject retrieves a project's job rows, newest first.
	GetJobsByProject(ctx context.Context, projectID core.ID) ([]*core.JobProgress, error)

	// GetLatestJob retrieves a project's most recent job of the given type.
	// Returns ErrNotFound if no such job exists.
	GetLatestJob(ctx context.Context, projectID core.ID, jobType core.JobType) (*core.JobProgress, error)
}

// ChatRepository provides operations for the project assistant conversation.
type ChatRepository interface {
	Repository
	// AddMessages appends one or more chat messages.
	AddMessages(ctx context.Context, messages ...*core.ChatMessage) ([]*core.ChatMessage, error)

	// GetRecentMessages retrieves the N most recent messages of a project,
	// oldest first so they can be replayed as conversation history.
	GetRecentMessages(ctx context.Context, projectID core.ID, limit int) ([]*core.ChatMessage, error)

	// DeleteMessagesByProject clears a project's conversation.
	DeleteMessagesByProject(ctx context.Context, projectID core.ID) error
}

// QueueTask is a unit of deferred work persisted by a QueueStore.
type QueueTask struct {
	Id         uint64
	Kind       string
	Payload    []byte
	Attempts   int
	NotBefore  time.Time // earliest time the task may be leased
	EnqueuedAt time.Time
}

// QueueStore persists queue tasks for the durable queue implementation.
// Tasks survive restarts; delivery is at-least-once.
type QueueStore interface {
	// Enqueue persists a new task and returns its assigned ID.
	Enqueue(ctx context.Context, kind string, payload []byte) (uint64, error)

	// Lease atomically claims up to limit pending tasks whose NotBefore has
	// passed, making them invisible to other consumers until leaseFor expires.
	// An expired lease returns the task to the pending set.
	Lease(ctx context.Context, now time.Time, leaseFor time.Duration, limit int) ([]*QueueTask, error)

	// Ack removes a completed task permanently.
	Ack(ctx context.Context, id uint64) error

	// Retry returns a failed task to the pending set with an incremented
	// attempt count, delayed until notBefore.
	Retry(ctx context.Context, id uint64, notBefore time.Time) error

	// Bury moves a task to the dead-letter set, out of delivery rotation.
	Bury(ctx context.Context, id uint64, reason string) error

	// DeadLetters lists buried tasks for inspection.
	DeadLetters(ctx context.Context) ([]*QueueTask, error)

	// Close releases queue resources.
	Close() error
}
