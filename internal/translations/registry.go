package translations

import (
	"sync"

	"github.com/goliatone/go-polyglot/internal/domain"
)

// Registry is the in-process OwnerRegistry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.OwnerKind]OwnerHandler
}

// NewRegistry builds a registry holding the supplied handlers.
func NewRegistry(handlers ...OwnerHandler) *Registry {
	r := &Registry{handlers: make(map[domain.OwnerKind]OwnerHandler, len(handlers))}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds or replaces the handler for its kind.
func (r *Registry) Register(handler OwnerHandler) {
	if handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Kind()] = handler
}

// Handler implements OwnerRegistry.
func (r *Registry) Handler(kind domain.OwnerKind) (OwnerHandler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[domain.NormalizeOwnerKind(string(kind))]
	return h, ok
}

// Kinds lists the registered owner kinds.
func (r *Registry) Kinds() []domain.OwnerKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.OwnerKind, 0, len(r.handlers))
	for kind := range r.handlers {
		out = append(out, kind)
	}
	return out
}
