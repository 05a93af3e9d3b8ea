package badger

import "github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"

// Repositories bundles every repository opened against one backend.
type Repositories struct {
	Documents storage.DocumentRepository
	Sections  storage.SectionRepository
	Items     storage.ItemRepository
	Drafts    storage.DraftRepository
	Chunks    storage.ChunkRepository
	Feedback  storage.FeedbackRepository
	Jobs      storage.JobRepository
	Chat      storage.ChatRepository
	Queue     storage.QueueStore

	backend *Backend
	closers []interface{ Close() error }
}

// NewRepositories opens a BadgerDB database at path and constructs every
// repository against it. Caller must Close when done.
func NewRepositories(path string) (*Repositories, error) {
	return newRepositories(path, false)
}

func newRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{backend: backend}

	fail := func(err error) (*Repositories, error) {
		repos.Close()
		return nil, err
	}

	documents, err := NewDocumentRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Documents = documents
	repos.closers = append(repos.closers, documents)

	sections, err := NewSectionRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Sections = sections
	repos.closers = append(repos.closers, sections)

	items, err := NewItemRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Items = items
	repos.closers = append(repos.closers, items)

	drafts, err := NewDraftRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Drafts = drafts
	repos.closers = append(repos.closers, drafts)

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Chunks = chunks
	repos.closers = append(repos.closers, chunks)

	feedback, err := NewFeedbackRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Feedback = feedback
	repos.closers = append(repos.closers, feedback)

	jobs, err := NewJobRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Jobs = jobs
	repos.closers = append(repos.closers, jobs)

	chat, err := NewChatRepository(backend)
	if err != nil {
		return fail(err)
	}
	repos.Chat = chat
	repos.closers = append(repos.closers, chat)

	queue, err := NewQueueStore(backend)
	if err != nil {
		return fail(err)
	}
	repos.Queue = queue
	repos.closers = append(repos.closers, queue)

	return repos, nil
}

// Backend exposes the underlying backend for callers that need
// low-level access, such as the facade's health checks.
func (r *Repositories) Backend() *Backend {
	return r.backend
}

// Close closes every repository and the shared backend.
func (r *Repositories) Close() error {
	var firstErr error
	for _, closer := range r.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := r.backend.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
