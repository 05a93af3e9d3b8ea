package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentKind classifies an uploaded document by its role in the project.
type DocumentKind int

const (
	// DocumentKindRFP is a tender document the response is drafted against.
	DocumentKindRFP DocumentKind = iota + 1
	// DocumentKindTemplate is a response template provided by the team.
	DocumentKindTemplate
	// DocumentKindPastSubmission is a previous submission used as knowledge.
	DocumentKindPastSubmission
	// DocumentKindReference is supporting reference material used as knowledge.
	DocumentKindReference
	// DocumentKindAnalysisReport is an evaluation report of a past response.
	DocumentKindAnalysisReport
)

// IsKnowledge reports whether documents of this kind feed the retrieval index.
func (k DocumentKind) IsKnowledge() bool {
	return k == DocumentKindPastSubmission || k == DocumentKindReference
}

// Document is an uploaded file with its extracted text.
type Document struct {
	Id            ID
	ProjectId     ID
	Filename      string
	Kind          DocumentKind
	MimeType      string
	BlobName      string // key in the external blob store
	ExtractedText string
	PageCount     int
	OcrUsed       bool
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// SectionSource records where an outline section came from.
type SectionSource int

const (
	// SectionSourceTemplate means the section was found in the response template.
	SectionSourceTemplate SectionSource = iota + 1
	// SectionSourceRFP means the section was detected in the tender documents.
	SectionSourceRFP
	// SectionSourceAISuggested means the section was recommended by the model.
	SectionSourceAISuggested
)

// OutlineSection is a node in the response document structure.
// Each section owns exactly one DraftGroup.
type OutlineSection struct {
	Id          ID
	ProjectId   ID
	ParentId    ID // 0 for top-level sections
	Position    int
	Title       string
	Description string
	Source      SectionSource
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// ItemKind distinguishes the two kinds of extracted obligations.
type ItemKind int

const (
	// ItemKindQuestion requires a written narrative response.
	ItemKindQuestion ItemKind = iota + 1
	// ItemKindCondition is an imposed constraint requiring only confirmation.
	ItemKindCondition
)

// ItemStatus is the lifecycle status of an extracted item's response.
type ItemStatus int

const (
	ItemStatusPending ItemStatus = iota + 1
	ItemStatusDrafted
	ItemStatusReviewed
	ItemStatusFinal
)

// String returns the wire label used in prompts and reports.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusPending:
		return "pending"
	case ItemStatusDrafted:
		return "drafted"
	case ItemStatusReviewed:
		return "reviewed"
	case ItemStatusFinal:
		return "final"
	default:
		return "unknown"
	}
}

// ExtractedItem is an atomic obligation pulled from tender text.
// Items are bulk-created by the extraction stage and individually
// editable afterwards.
type ExtractedItem struct {
	Id               ID
	ProjectId        ID
	SectionId        ID // owning OutlineSection, 0 if unassigned
	Kind             ItemKind
	OriginalText     string
	SectionRef       string // e.g. "3.1.2", empty if the document has none
	SourceDocumentId ID
	SourcePage       int
	Themes           []string
	Addressed        bool
	ResponseText     string
	Status           ItemStatus
	InsertedAt       time.Time
	UpdatedAt        time.Time
}

// DraftStatus is the lifecycle status of a draft group.
type DraftStatus int

const (
	DraftStatusPending DraftStatus = iota + 1
	DraftStatusGenerating
	DraftStatusDrafted
	DraftStatusEdited
	DraftStatusFinal
)

// DraftGroup is the generation unit for one outline section.
// Exactly one active DraftGroup exists per section.
type DraftGroup struct {
	Id            ID
	ProjectId     ID
	SectionId     ID
	ModelId       string
	SystemPrompt  string
	GeneratedText string
	Status        DraftStatus
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// ResponseDraft is an immutable version snapshot of a DraftGroup's content.
// Versions are monotonically increasing per group; the history is append-only.
type ResponseDraft struct {
	Id         ID
	GroupId    ID
	Version    int
	Content    string
	ModelUsed  string
	PromptUsed string
	InsertedAt time.Time
}

// DocumentChunk is a contiguous slice of a document's extracted text,
// the unit of retrieval indexing. Chunks are rebuilt wholesale whenever
// indexing re-runs for a project.
type DocumentChunk struct {
	Id           ID
	ProjectId    ID
	DocumentId   ID
	Content      string
	SectionTitle string
	StartChar    int
	EndChar      int
	Vector       []float32 // embedding, empty until the indexer embeds the chunk
	InsertedAt   time.Time
}

// FeedbackType classifies an observation from a past evaluation.
type FeedbackType int

const (
	FeedbackTypeStrength FeedbackType = iota + 1
	FeedbackTypeWeakness
	FeedbackTypeRecommendation
	FeedbackTypeComment
)

// String returns the wire label used in prompts and reports.
func (t FeedbackType) String() string {
	switch t {
	case FeedbackTypeStrength:
		return "strength"
	case FeedbackTypeWeakness:
		return "weakness"
	case FeedbackTypeRecommendation:
		return "recommendation"
	case FeedbackTypeComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Severity grades a feedback item or a compliance warning.
type Severity int

const (
	SeverityCritical Severity = iota + 1
	SeverityMajor
	SeverityMinor
	SeverityInfo
)

// String returns the wire label used in prompts and reports.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityMajor:
		return "major"
	case SeverityMinor:
		return "minor"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// AnalysisFeedback is an observation extracted from an evaluation report,
// optionally linked to an ExtractedItem.
type AnalysisFeedback struct {
	Id         ID
	ProjectId  ID
	DocumentId ID
	ItemId     ID // linked ExtractedItem, 0 if unlinked
	SectionRef string
	Type       FeedbackType
	Severity   Severity
	Content    string
	Addressed  bool
	InsertedAt time.Time
}

// JobType identifies the kind of asynchronous work a JobProgress row tracks.
type JobType int

const (
	JobTypeStructure JobType = iota + 1
	JobTypeExtraction
	JobTypeIndexing
	JobTypeFeedback
	JobTypeDraftAll
)

// JobStatus is the state of a job row. Completed and Error are terminal;
// a job is never resumed.
type JobStatus int

const (
	JobStatusQueued JobStatus = iota + 1
	JobStatusProcessing
	JobStatusCompleted
	JobStatusError
)

// IsTerminal reports whether the status is a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// JobProgress is the persisted, pollable state of one pipeline stage run.
// Progress is an integer percentage that never decreases within a run and
// is forced to 100 on completion.
type JobProgress struct {
	Id           ID
	ProjectId    ID
	Type         JobType
	Status       JobStatus
	Progress     int
	Message      string
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  time.Time
}

// ChatRole identifies the author of a chat message.
type ChatRole int

const (
	ChatRoleUser ChatRole = iota + 1
	ChatRoleAssistant
)

// ChatMessage is one turn of the project assistant conversation.
type ChatMessage struct {
	Id         ID
	ProjectId  ID
	Role       ChatRole
	Content    string
	ItemId     ID // extracted item the message edits, 0 if none
	InsertedAt time.Time
}

// SimilarityMatch is a chunk match from vector similarity search.
type SimilarityMatch struct {
	ChunkId ID
	Score   float32
}

// RetrievedChunk is a knowledge-base search hit with its combined score.
type RetrievedChunk struct {
	Chunk *DocumentChunk
	Score float32
}
