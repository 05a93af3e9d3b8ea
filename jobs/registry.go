package jobs

import (
	"context"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// Handler processes one queued task for a project.
type Handler func(ctx context.Context, projectID core.ID) error

// Registry maps task kinds to their handlers. It is populated once at
// wiring time and read-only afterwards, so queues can consult it
// concurrently without locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a task kind.
// Registering the same kind twice returns ErrKindRegistered.
func (r *Registry) Register(kind string, handler Handler) error {
	if kind == "" || handler == nil {
		return ErrInvalidRegistration
	}
	if _, exists := r.handlers[kind]; exists {
		return ErrKindRegistered
	}
	r.handlers[kind] = handler
	return nil
}

// Handler returns the handler bound to kind.
func (r *Registry) Handler(kind string) (Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds lists the registered task kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	return kinds
}
